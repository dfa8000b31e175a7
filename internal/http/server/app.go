package server

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"radarmap/docs"
	"radarmap/internal/config"
	handlers "radarmap/internal/http/handler"
	"radarmap/internal/http/middleware"
	"radarmap/internal/service"
	"radarmap/internal/web"
)

// Deps are the collaborators NewApp wires into routes and middleware.
type Deps struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Assets   web.Assets
	Service  service.RadarService
	DB       handlers.Pinger // nil when track history is off
}

// NewApp builds the Fiber application: views, error handling, the global
// middleware chain and every route.
func NewApp(cfg *config.AppConfig, d Deps) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:               "radarmap",
		Views:                 web.NewViews(d.Assets.Templates, cfg.Debug),
		ErrorHandler:          handlers.ErrorHandler(),
		EnablePrintRoutes:     cfg.Debug,
		DisableStartupMessage: !cfg.Debug,
	})

	metrics, err := middleware.NewPrometheusMiddleware(d.Registry)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	// Order matters: recover wraps everything, the request id must exist
	// before the span and log line are written.
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Debug,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			d.Logger.Error("panic recovered",
				slog.Any("request_id", c.Locals(middleware.RequestIDLocalKey)),
				slog.Any("panic", e),
				slog.String("stack", string(debug.Stack())),
			)
		},
	}))
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(d.Logger))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		Service:      d.Service,
		DB:           d.DB,
		Static:       d.Assets.Static,
		RadarEnabled: cfg.Radar.Enabled,
		PollInterval: cfg.Radar.PollInterval,
		Debug:        cfg.Debug,
	})

	return app, nil
}
