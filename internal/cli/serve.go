package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-alohomora/internal/config"
	"github.com/goliatone/go-alohomora/internal/server"
	"github.com/goliatone/go-alohomora/pkg/renderers/html"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return serveApp(ctx, cfg, a)
		},
	}

	c.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return c
}

// serveApp runs the web front end until ctx is done. a is closed on every
// return path.
func serveApp(ctx context.Context, cfg config.Config, a *app) (err error) {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if closeErr := a.Close(closeCtx); closeErr != nil {
			a.logger.Error("server.close_failed", "error", closeErr)
		}
	}()

	renderer, err := html.New(html.WithTheme(cfg.Theme.Name, cfg.Theme.Variant))
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(a.logger.With("component", "server")),
		server.WithPinger(a.client),
		server.WithAssets(html.AssetsFS()),
	}
	if cfg.Proxy.Enabled {
		opts = append(opts, server.WithProxy(cfg.Proxy.Upstream))
	}

	srv, err := server.New(renderer, a.borrower, a.loan, opts...)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Addr)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		a.logger.Info("server.shutdown", "timeout", cfg.Server.ShutdownTimeout.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}
