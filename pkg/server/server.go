// Package server assembles the HTTP surface: middleware, route groups and
// operational endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/routes/filtergroup"
	"github.com/Ramsey-B/fern/pkg/routes/filtervalue"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/property"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps the echo application
type Server struct {
	echo    *echo.Echo
	checker *health.Checker
	cfg     config.Config
	logger  ectologger.Logger
}

// New builds the echo application with middleware and all route groups
// registered. redis may be nil when caching is disabled.
func New(cfg config.Config, db database.DB, redis pinger, logger ectologger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	api := e.Group("/api/v1")
	filtergroup.Register(api.Group("/filter-groups"))
	filtervalue.Register(api.Group("/filter-values"))
	property.Register(api.Group("/properties"))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	checker := health.NewChecker(db, redis, cfg.AppVersion)
	checker.RegisterRoutes(e)

	return &Server{
		echo:    e,
		checker: checker,
		cfg:     cfg,
		logger:  logger,
	}
}

// InitTracing wires the global tracer: OTLP when a collector endpoint is
// configured, otherwise a no-op console exporter. The returned shutdown
// flushes buffered spans.
func InitTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = &exporters.ConsoleExporter{}
	if cfg.OtlpEndpoint != "" {
		otlp, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.OtlpEndpoint,
			Protocol: cfg.OtlpProtocol,
			Insecure: cfg.OtlpInsecure,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		exporter = otlp
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp.Shutdown, nil
}

// Migrate applies pending schema migrations. Run before Start so the first
// request never races the schema.
func Migrate(cfg config.Config, db database.DB, logger ectologger.Logger) error {
	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	ms := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})

	return ms.Migrate(cfg.DatabaseName, driver)
}

// Start begins serving and marks the service ready
func (s *Server) Start() error {
	s.checker.SetReady(true)
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Infof("Listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.checker.SetReady(false)
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying echo instance for tests
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
