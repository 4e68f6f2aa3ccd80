package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-alohomora/pkg/contract"
	"github.com/goliatone/go-alohomora/pkg/controller"
	"github.com/goliatone/go-alohomora/pkg/page"
	"github.com/goliatone/go-alohomora/pkg/render"
)

// Pinger reports whether the backend API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// directoryMaxAge bounds how long a rendered loan form keeps its borrower
// list. An older form is checked against a fresh fetch.
const directoryMaxAge = 30 * time.Minute

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPinger enables the readiness probe against the backend.
func WithPinger(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

// WithProxy forwards /api/* to upstream with the /api prefix removed.
func WithProxy(upstream string) Option {
	return func(s *Server) {
		s.upstream = strings.TrimRight(strings.TrimSpace(upstream), "/")
	}
}

// WithAssets serves files under /assets.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// WithTokenSource overrides how submission tokens are minted.
func WithTokenSource(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.tokens = fn
		}
	}
}

// Server routes pages and form posts to the controllers and renders the
// result.
type Server struct {
	app         *fiber.App
	renderer    render.Renderer
	borrower    *controller.Borrower
	loan        *controller.Loan
	directories *controller.Directories
	pinger      Pinger
	upstream    string
	assets      fs.FS
	tokens      func() string
	logger      *slog.Logger
}

// New wires the routes. The renderer and both controllers are required.
func New(renderer render.Renderer, borrower *controller.Borrower, loan *controller.Loan, opts ...Option) (*Server, error) {
	if renderer == nil || borrower == nil || loan == nil {
		return nil, errors.New("server: renderer and controllers are required")
	}

	s := &Server{
		renderer:    renderer,
		borrower:    borrower,
		loan:        loan,
		directories: controller.NewDirectories(directoryMaxAge),
		tokens:      controller.NewSubmissionToken,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)

	s.app.Get("/healthz", s.healthz)
	s.app.Get("/readiness", s.readiness)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	s.app.Get("/openapi.yaml", s.openAPI)
	if s.assets != nil {
		s.app.Use("/assets", filesystem.New(filesystem.Config{
			Root:   http.FS(s.assets),
			MaxAge: 3600,
		}))
	}
	if s.upstream != "" {
		s.app.All("/api/*", s.proxy)
	}

	s.app.Get("/", s.home)
	s.app.Get("/pages/:page", s.showPage)
	s.app.Post("/pages/borrower", s.submitBorrower)
	s.app.Post("/pages/loan", s.submitLoan)

	return s, nil
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("server.listen", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) home(c *fiber.Ctx) error {
	return s.renderPage(c, page.Home)
}

func (s *Server) showPage(c *fiber.Ctx) error {
	p, err := page.Parse(c.Params("page"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	}
	return s.renderPage(c, p)
}

func (s *Server) renderPage(c *fiber.Ctx, p page.Page) error {
	view := s.newView(c, p)

	switch p {
	case page.Borrower:
		form := s.borrower.Form()
		view.Form = &form
	case page.Loan:
		dir := s.loan.LoadDirectory(c.UserContext())
		s.directories.Remember(view.SubmissionToken(), dir)
		form := s.loan.Form(dir)
		view.Form = &form
	}

	return s.send(c, fiber.StatusOK, view)
}

func (s *Server) submitBorrower(c *fiber.Ctx) error {
	values, err := formValues(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed form body")
	}

	out := s.borrower.Submit(c.UserContext(), values)

	view := s.newView(c, page.Borrower)
	form := s.borrower.Form()
	view.Form = &form
	out.Apply(&view)
	return s.send(c, out.HTTPStatus(), view)
}

func (s *Server) submitLoan(c *fiber.Ctx) error {
	values, err := formValues(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed form body")
	}

	// The selection is checked against the list this form was rendered with.
	ctx := c.UserContext()
	dir, ok := s.directories.Lookup(values.Get(render.SubmissionField))
	if !ok {
		dir = s.loan.LoadDirectory(ctx)
	}

	out := s.loan.Submit(ctx, dir, values)

	view := s.newView(c, page.Loan)
	form := s.loan.Form(dir)
	view.Form = &form
	out.Apply(&view)
	s.directories.Remember(view.SubmissionToken(), dir)
	return s.send(c, out.HTTPStatus(), view)
}

// newView carries a fresh submission token and any theme request made
// through the query string.
func (s *Server) newView(c *fiber.Ctx, p page.Page) render.View {
	view := render.NewView(p)
	if p.HasForm() {
		view.SetHidden(render.SubmissionToken(s.tokens()))
	}

	requested := map[string]any{}
	if name := strings.TrimSpace(c.Query("theme")); name != "" {
		requested["name"] = name
	}
	if variant := strings.TrimSpace(c.Query("variant")); variant != "" {
		requested["variant"] = variant
	}
	if len(requested) > 0 {
		view.Theme = requested
	}
	return view
}

func (s *Server) send(c *fiber.Ctx, status int, view render.View) error {
	out, err := s.renderer.Render(c.UserContext(), view)
	if err != nil {
		s.logger.Error("page.render.failed", "page", string(view.Page), "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
	c.Set(fiber.HeaderContentType, s.renderer.ContentType())
	return c.Status(status).Send(out)
}

func (s *Server) proxy(c *fiber.Ctx) error {
	target := s.upstream + "/" + strings.TrimPrefix(c.Params("*"), "/")
	if query := string(c.Request().URI().QueryString()); query != "" {
		target += "?" + query
	}
	if err := proxy.Do(c, target); err != nil {
		s.logger.Error("proxy.forward.failed", "target", target, "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "Bad Gateway")
	}
	return nil
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) readiness(c *fiber.Ctx) error {
	if s.pinger == nil {
		return c.SendStatus(fiber.StatusOK)
	}
	if err := s.pinger.Ping(c.UserContext()); err != nil {
		s.logger.Warn("readiness.ping.failed", "error", err)
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) openAPI(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(contract.Raw())
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.logger.Info("http.request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else {
		s.logger.Error("http.unhandled", "path", c.Path(), "error", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(errorMessage(err))
}

func errorMessage(err error) string {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return fiber.ErrInternalServerError.Message
}

// formValues decodes an urlencoded form post.
func formValues(c *fiber.Ctx) (url.Values, error) {
	return url.ParseQuery(string(c.Body()))
}
