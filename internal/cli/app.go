package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-alohomora/internal/config"
	"github.com/goliatone/go-alohomora/internal/logging"
	"github.com/goliatone/go-alohomora/internal/tracing"
	"github.com/goliatone/go-alohomora/pkg/api"
	"github.com/goliatone/go-alohomora/pkg/contract"
	"github.com/goliatone/go-alohomora/pkg/controller"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/page"
)

// app holds everything both front ends share: logger, tracing, the API
// client, the event publisher and the two form controllers.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	tracing   *tracing.Provider
	publisher events.Publisher
	client    *api.Client
	borrower  *controller.Borrower
	loan      *controller.Loan
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOut,
	})
	if err != nil {
		return nil, err
	}

	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
		Writer:         logOut,
	})
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithPrefix(cfg.API.Prefix),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger.With("component", "api")),
		api.WithTracer(tp.Tracer()),
		api.WithResultFields(cfg.API.ResultFields),
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	validator, err := contract.Default()
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	publisher, err := events.New(ctx, events.Config{
		Driver: cfg.Events.Driver,
		SQS: events.SQSConfig{
			QueueName:   cfg.Events.SQS.QueueName,
			EndpointURL: cfg.Events.SQS.EndpointURL,
		},
		AMQPURL:      cfg.Events.AMQP.URL,
		AMQPExchange: cfg.Events.AMQP.Exchange,
	}, logger.With("component", "events"))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("events: %w", err)
	}

	opts := []controller.Option{
		controller.WithLogger(logger.With("component", "controller")),
		controller.WithValidator(validator),
		controller.WithGuard(controller.NewGuard(cfg.Submission.GuardTTL)),
		controller.WithPublisher(publisher),
		controller.WithTracer(tp.Tracer()),
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		tracing:   tp,
		publisher: publisher,
		client:    client,
		borrower:  controller.NewBorrower(client, page.Borrower.Path(), opts...),
		loan:      controller.NewLoan(client, page.Loan.Path(), opts...),
	}, nil
}

// Close flushes spans and releases the publisher.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.publisher.Close(), a.tracing.Shutdown(ctx))
}
