package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"kpistats/internal/config"
	"kpistats/internal/datasource"
	apperrors "kpistats/internal/errors"
	"kpistats/internal/infrastructure"
	customMiddleware "kpistats/internal/middleware"
	"kpistats/internal/services"
	handlers "kpistats/internal/transport/http"
	"kpistats/internal/validation"
	"kpistats/pkg/contracts"
)

// Application represents the HTTP API container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Telemetry     *infrastructure.Telemetry
	StatsService  *services.StatsService
	HealthService *services.HealthService
	ErrorHandler  *apperrors.ErrorHandler
}

// NewApplication builds the services and router. A nil telemetry records
// nothing and exposes no /metrics endpoint.
func NewApplication(cfg *config.Config, logger *slog.Logger, tel *infrastructure.Telemetry, fetcher datasource.Fetcher) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is required", nil)
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry()
	}

	a := &Application{
		Config:    cfg,
		Logger:    infrastructure.WithComponent(logger, "app"),
		Telemetry: tel,
	}

	statsService, err := services.NewStatsService(fetcher, tel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats service: %w", err)
	}
	a.StatsService = statsService
	a.HealthService = services.NewHealthService(cfg.Source.URL, logger)
	a.ErrorHandler = apperrors.NewErrorHandler(logger, false, infrastructure.GetTraceID)

	if err := a.setupRouter(logger); err != nil {
		return nil, err
	}
	a.createServer()
	return a, nil
}

func (a *Application) setupRouter(logger *slog.Logger) error {
	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			logger,
			a.ErrorHandler,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r, logger)

	// Prometheus scrape endpoint
	if a.Telemetry.MetricsHandler != nil {
		r.Handle("/metrics", a.Telemetry.MetricsHandler)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, logger *slog.Logger) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		statsHandler := handlers.NewStatsHandler(a.StatsService, validation.NewRequestValidator(), logger, a.ErrorHandler)
		r.Mount("/stats", statsHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run listens on the configured port and serves until ctx is cancelled or
// the process receives SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return apperrors.NewNetworkError("failed to listen", err).WithContext("addr", a.Server.Addr)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Starting server",
			slog.String("version", contracts.Version),
			slog.String("address", ln.Addr().String()),
			slog.String("source_url", a.Config.Source.URL),
			slog.Bool("rate_limit", a.Config.Security.RateLimit.Enabled),
		)
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown error: %w", err))
	}

	if len(errs) == 0 {
		a.Logger.InfoContext(ctx, "Server shutdown complete")
	}
	return errors.Join(errs...)
}
