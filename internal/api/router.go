package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/postboard/postboard-api/internal/api/handler"
	"github.com/postboard/postboard-api/internal/api/middleware"
	"github.com/postboard/postboard-api/internal/core/ports"
	"github.com/postboard/postboard-api/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     ports.AuthService
	Posts    ports.PostService
	Verifier ports.TokenVerifier
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handlers.Pinger
	Log    zerolog.Logger
	// Metrics mounts the prometheus middleware and /metrics. Tests leave it
	// off so repeated routers don't re-register collectors.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("64K"))
	if deps.Metrics {
		e.Use(echoprometheus.NewMiddleware("postboard"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	authHandler := handler.NewAuthHandler(deps.Auth)
	postHandler := handler.NewPostHandler(deps.Posts)
	requireAuth := middleware.Auth(deps.Verifier)

	// --- Public routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/users", authHandler.Register)

	// --- Authenticated routes ---
	e.GET("/users", authHandler.List, requireAuth)
	e.GET("/posts", postHandler.Feed, requireAuth)
	e.POST("/posts", postHandler.Create, requireAuth)
	e.DELETE("/posts/:id", postHandler.Delete, requireAuth)

	// --- Probes and docs ---
	health := handlers.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
