package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/campusloc/locations-api/docs"
	"github.com/campusloc/locations-api/internal/api/handler"
	"github.com/campusloc/locations-api/internal/api/middleware"
	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/pkg/validation"
)

const defaultRequestTimeout = 10 * time.Second

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Log       zerolog.Logger
	Locations ports.LocationService
	Auth      ports.AuthService
	Verifier  ports.TokenVerifier
	// Readiness lists the dependencies probed by /health/ready.
	Readiness []handler.Dependency
	// RequestTimeout bounds every request's context. Zero means 10s.
	RequestTimeout time.Duration
	// Registry receives the HTTP metrics and backs /metrics.
	// Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "locations",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	locationHandler := handler.NewLocationHandler(d.Locations)
	adminOnly := []echo.MiddlewareFunc{
		middleware.Auth(d.Verifier),
		middleware.RequireRoles(domain.RoleAdministrator),
	}

	// --- Auth routes ---
	e.POST("/users", authHandler.Login)

	// --- Location routes ---
	locations := e.Group("/locations")
	locations.GET("", locationHandler.List)
	locations.GET("/:id", locationHandler.Get)
	locations.POST("", locationHandler.Create, adminOnly...)
	locations.PUT("/:id", locationHandler.Update, adminOnly...)
	locations.DELETE("/:id", locationHandler.Delete, adminOnly...)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Log, d.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
