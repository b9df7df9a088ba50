package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungtweek/chat-mock/internal/logger"
	"github.com/yungtweek/chat-mock/internal/openapi"
)

const CompletionsPath = "/v1/chat/completions"

type ServerOptions struct {
	Addr           string
	CORSOrigins    []string
	MetricsEnabled bool
}

// Server wraps an echo instance and its listen address.
type Server struct {
	addr string
	echo *echo.Echo
}

func NewServer(opts ServerOptions, h *CompletionsHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(NewTrackMiddleware())
	e.Use(NewRecoverMiddleware())
	e.Use(NewCORSMiddleware(opts.CORSOrigins))

	e.POST(CompletionsPath, h.ChatCompletions)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", openapi.YAML())
	})
	e.GET("/openapi.json", func(c echo.Context) error {
		doc, err := openapi.JSON()
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, doc)
	})
	if opts.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return &Server{addr: opts.Addr, echo: e}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on the configured address and blocks until the server stops.
func (s *Server) Run() error {
	logger.Log.Infow("[http] starting server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Errorw("[http] server stopped with error", "err", err)
		return err
	}
	logger.Log.Info("[http] server stopped gracefully")
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// (open streams included) until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Infow("[http] graceful stop", "addr", s.addr)
	return s.echo.Shutdown(ctx)
}
