// Package server is the labelkit preview service: an HTTP API that renders,
// validates and measures label scenes without an editor attached.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gogpu/labelkit"
	"github.com/gogpu/labelkit/config"
	"github.com/gogpu/labelkit/export"
	"github.com/gogpu/labelkit/generate"
	"github.com/gogpu/labelkit/internal/metrics"

	// Encoders for the formats served by /api/v1/export.
	_ "github.com/gogpu/labelkit/export/backends/raster"
	_ "github.com/gogpu/labelkit/export/backends/svg"
)

// ShutdownTimeout bounds the graceful shutdown in Run.
const ShutdownTimeout = 10 * time.Second

// Server wires the HTTP routes to the export, codec, grid and ruler
// packages.
type Server struct {
	echo     *echo.Echo
	settings config.Settings
	images   export.ImageSource
	metrics  *metrics.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithImageSource sets the source used to resolve image, QR and barcode
// elements while rendering. The default only accepts the sources allowed
// by config.Settings.ServerLoaderConfig.
func WithImageSource(src export.ImageSource) Option {
	return func(s *Server) { s.images = src }
}

// WithMetrics records request and export metrics into m and serves them
// on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a server from settings.
func New(settings config.Settings, opts ...Option) *Server {
	s := &Server{settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	if s.images == nil {
		loader := generate.NewLoader(settings.ServerLoaderConfig())
		s.images = export.NewImageSource(export.ImageSourceFunc(loader.Load))
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	if settings.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(settings.Server.BodyLimit))
	}
	e.Use(s.observe)

	e.GET("/healthz", s.health)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
	api := e.Group("/api/v1")
	api.POST("/export/:format", s.exportScene)
	api.POST("/validate", s.validateScene)
	api.GET("/grid", s.gridGeometry)
	api.GET("/measure", s.measure)
	api.GET("/ticks", s.ticks)

	s.echo = e
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on the configured listen address until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		labelkit.Logger().Info("server: listening", "addr", s.settings.Server.Listen)
		errCh <- s.echo.Start(s.settings.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	labelkit.Logger().Info("server: shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe logs each request and records it in the metrics.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		d := time.Since(start)
		req, res := c.Request(), c.Response()
		if s.metrics != nil {
			s.metrics.RecordRequest(req.Method, c.Path(), res.Status, d)
		}
		labelkit.Logger().Debug("server: request",
			"method", req.Method, "path", req.URL.Path, "status", res.Status, "duration", d)
		return nil
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleError renders every error as a JSON body.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		labelkit.Logger().Warn("server: request failed", "path", c.Request().URL.Path, "err", err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorResponse{Error: msg})
}
