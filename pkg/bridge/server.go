// Package bridge serves the host message protocol over HTTP: a design tool
// plugin opens a session with its current selection, tags shapes and asks
// for the export or the generated code.
package bridge

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	designtagger "github.com/kataras/design-tagger"
	"github.com/kataras/design-tagger/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// SessionMaxAge is how long an unused session is kept.
	SessionMaxAge = 30 * time.Minute
	// CleanupInterval is how often unused sessions are looked for.
	CleanupInterval = 5 * time.Minute
)

// Server is the bridge HTTP server.
type Server struct {
	echo     *echo.Echo
	sessions *Manager
	cfg      *config.Config
	logger   designtagger.Logger
}

// New creates a server. A nil cfg means config.Default(), a nil logger
// disables progress messages but not request logging.
func New(cfg *config.Config, logger designtagger.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		echo:     echo.New(),
		sessions: NewManager(),
		cfg:      cfg,
		logger:   logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/health"
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api")
	api.GET("/health", s.HandleHealth)

	sessions := api.Group("/sessions")
	sessions.POST("", s.HandleOpenSession)
	sessions.DELETE("/:id", s.HandleCloseSession)
	sessions.PUT("/:id/document", s.HandleReplaceDocument)
	sessions.GET("/:id/selection", s.HandleSelection)

	sessions.GET("/:id/tags", s.HandleListTags)
	sessions.DELETE("/:id/tags", s.HandleClearTags)
	sessions.PUT("/:id/tags/:shapeId", s.HandleApplyTag)
	sessions.DELETE("/:id/tags/:shapeId", s.HandleRemoveTag)

	sessions.GET("/:id/export", s.HandleExport)
	sessions.GET("/:id/export/msgpack", s.HandleExportMsgpack)
	sessions.GET("/:id/code", s.HandleCode)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *Manager { return s.sessions }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, closing unused sessions
// periodically, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.cfg.Server.Addr
	}

	errCh := make(chan error, 1)
	go func() {
		s.logInfo("Bridge listening on http://%s", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-ticker.C:
			if n := s.sessions.CleanupOlderThan(SessionMaxAge); n > 0 {
				s.logInfo("Closed %d idle session(s)", n)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.logInfo("Shutting down bridge...")
			return s.echo.Shutdown(shutdownCtx)
		}
	}
}

func (s *Server) logInfo(f string, a ...any) {
	if s.logger != nil {
		s.logger.Infof(f, a...)
	}
}

// exportOptions returns the pipeline options of a request: the configured
// settings with optional ids and order query overrides. Images are never
// downloaded by the bridge.
func (s *Server) exportOptions(c echo.Context) (designtagger.Options, error) {
	cfg := *s.cfg
	cfg.Images.Download = false
	if order := c.QueryParam("order"); order != "" {
		cfg.Order = exportOrder(order)
	}
	if err := cfg.Validate(); err != nil {
		return designtagger.Options{}, NewBadRequestError("invalid query", err)
	}

	var selection []string
	if ids := c.QueryParam("ids"); ids != "" {
		selection = designtagger.ParseNodeIDs(ids)
	}
	return designtagger.Options{
		Selection: selection,
		Config:    &cfg,
		Logger:    s.logger,
	}, nil
}

func isYAMLContent(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "yaml")
}
