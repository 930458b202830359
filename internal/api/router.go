package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"content-studio/backend/internal/logging"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	ServiceName string
	Logger      *logging.Logger
	// MCP, when set, is mounted under /mcp/*.
	MCP http.Handler
}

// NewRouter builds the echo instance with middleware and every route mounted.
func NewRouter(s *Server, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(otelecho.Middleware(opts.ServiceName))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			opts.Logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))

	handler := NewHandler(opts.ServiceName)
	e.GET("/health", echo.WrapHandler(http.HandlerFunc(handler.HandleHealth)))

	RegisterHandlers(e.Group("/api"), s)

	e.GET("/openapi.yaml", echo.WrapHandler(SpecHandler()))
	e.GET("/docs", echo.WrapHandler(SwaggerHandler()))

	if opts.MCP != nil {
		e.Any("/mcp/*", echo.WrapHandler(opts.MCP))
	}

	return e
}
