package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"leadexport/internal/config"
	apierrors "leadexport/internal/errors"
	"leadexport/internal/exporter"
	"leadexport/internal/infrastructure"
	customMiddleware "leadexport/internal/middleware"
	"leadexport/internal/services"
	handlers "leadexport/internal/transport/http"
	"leadexport/pkg/contracts"
	"leadexport/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	ErrorHandler  *apierrors.ErrorHandler
	Exporter      *exporter.Exporter
	ExportService *services.ExportService
	HealthService *services.HealthService
}

// NewApplication loads configuration from the environment, initializes the
// global logger and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, logger, nil)
}

// NewApplicationWithConfig builds the application from an already loaded
// configuration. traceOutput receives spans when the stdout trace exporter
// is selected (os.Stdout when nil).
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger, traceOutput io.Writer) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("application starting",
		slog.String("version", contracts.GetVersionString()),
		slog.Int("port", cfg.Server.Port),
		slog.String("locale", cfg.Export.Locale),
		slog.String("timezone", cfg.Export.Timezone))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, traceOutput, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if err := a.initializeServices(); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := a.setupRouter(); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	a.createServer()
	return a, nil
}

// initializeServices builds the exporter and the services around it
func (a *Application) initializeServices() error {
	loc, err := a.Config.Location()
	if err != nil {
		return err
	}

	formatter, err := exporter.NewLocaleFormatter(a.Config.Export.Locale, loc)
	if err != nil {
		return fmt.Errorf("failed to create timestamp formatter: %w", err)
	}

	metrics, err := exporter.NewMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create export metrics: %w", err)
	}

	a.Exporter = exporter.New(
		exporter.WithFormatter(formatter),
		exporter.WithLogger(a.Logger),
		exporter.WithMetrics(metrics),
		exporter.WithTracer(a.OTelProviders.Tracer),
	)

	a.ExportService = services.NewExportService(a.Exporter, customMiddleware.NewValidator(), services.ExportOptions{
		DefaultPrefix: a.Config.Export.DefaultPrefix,
		DefaultFormat: domain.ExportFormatCSV,
		MaxRecords:    a.Config.Export.MaxRecords,
	}, a.Logger)

	a.HealthService = services.NewHealthService(a.Logger,
		services.ReadinessCheck{Name: "exporter", Check: formatterCheck(formatter)},
	)

	return nil
}

// formatterCheck renders a probe record so a broken formatter shows up as
// not ready
func formatterCheck(formatter exporter.TimestampFormatter) func(context.Context) error {
	probe := domain.CaptureRecord{Email: "probe@example.com", CapturedAt: "2024-01-15T10:00:00Z"}
	return func(ctx context.Context) error {
		row := exporter.Row(probe, formatter)
		if len(row) != len(exporter.Headers) || row[5] == "" {
			return errors.New("exporter produced an incomplete row")
		}
		return ctx.Err()
	}
}

// setupRouter configures middleware and routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Scraped without the API middleware so rate limits never hide metrics.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.RequestID)
		r.Use(customMiddleware.RealIP)
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.RateLimit.RPS,
				a.Config.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	exportHandler := handlers.NewExportHandler(a.ExportService, a.Config.Server.MaxBodyBytes, a.Logger, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/captures", exportHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run listens on the configured address and serves until ctx is cancelled
// or the process receives SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop drains in-flight requests and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return errors.Join(errs...)
}
