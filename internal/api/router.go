package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/datapusher/webhook-relay/internal/api/handler"
	"github.com/datapusher/webhook-relay/internal/api/middleware"
	"github.com/datapusher/webhook-relay/internal/core/ports"
)

const defaultBodyLimit = "10M"

// Deps collects everything NewRouter wires into the Echo instance.
type Deps struct {
	Logger zerolog.Logger

	Accounts     ports.AccountService
	Destinations ports.DestinationService
	Dispatch     ports.DispatchService
	HealthChecks []handler.Pinger

	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// AdminJWTSecret protects /api when non-empty.
	AdminJWTSecret string
	TokenHeader    string
	BodyLimit      string
	ExposeErrors   bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.BodyLimit == "" {
		d.BodyLimit = defaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.ExposeErrors)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.HealthChecks...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Ingress ---
	ingress := handler.NewIngressHandler(d.Dispatch, d.TokenHeader, d.ExposeErrors)
	e.POST("/server/incoming_data", ingress.Receive)

	// --- Management API ---
	apiGroup := e.Group("/api")
	if d.AdminJWTSecret != "" {
		apiGroup.Use(middleware.Auth(d.AdminJWTSecret), middleware.RBAC(middleware.RoleAdmin))
	} else {
		d.Logger.Warn().Msg("ADMIN_JWT_SECRET not set, management API is unauthenticated")
	}

	accounts := handler.NewAccountHandler(d.Accounts)
	apiGroup.POST("/accounts", accounts.Create)
	apiGroup.GET("/accounts", accounts.List)
	apiGroup.GET("/accounts/:accountId", accounts.Get)
	apiGroup.PUT("/accounts/:accountId", accounts.Update)
	apiGroup.DELETE("/accounts/:accountId", accounts.Delete)

	destinations := handler.NewDestinationHandler(d.Destinations)
	apiGroup.POST("/destinations", destinations.Create)
	apiGroup.GET("/destinations", destinations.List)
	apiGroup.GET("/destinations/account/:accountId", destinations.ListByAccount)
	apiGroup.GET("/destinations/:id", destinations.Get)
	apiGroup.PUT("/destinations/:id", destinations.Update)
	apiGroup.DELETE("/destinations/:id", destinations.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
