package bootstrap

import (
	"net/http"

	"cms-search/config"
	"cms-search/internal/auth"
	authmw "cms-search/internal/auth/middleware"
	"cms-search/logger"
	"cms-search/middleware"
	"cms-search/rest"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// newEcho builds the router with the shared middleware chain.
func newEcho(handler *rest.Handler, authClient *auth.Client, otelEnabled bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if otelEnabled {
		e.Use(middleware.OTelStatusMiddleware())
	}
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.LoggingMiddleware(logger.GlobalContext))

	handler.RegisterRoutes(e, authmw.NewAuthMiddleware(authClient))
	return e
}

// newHTTPServer serves HTTP/1.1 and cleartext HTTP/2 on the same port.
func newHTTPServer(cfg config.HTTPConfig, e *echo.Echo) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(e, &http2.Server{}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
