// Package httpserver is the CDN's HTTP surface: public upload and serving,
// the gallery, and the password-gated admin area, routed with gin.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options are the HTTP-level settings.
type Options struct {
	Addr                 string
	MaxUploadSize        int64
	SessionTTL           time.Duration
	CookieSecure         bool
	RequireAuthForUpload bool
}

type HTTPServer struct {
	opts   Options
	auth   *services.AuthService
	files  *services.FileService
	health *services.HealthService
	logger logging.Logger
	engine *gin.Engine
}

func NewHTTPServer(o Options, l logging.Logger, as *services.AuthService, fs *services.FileService, hs *services.HealthService) (*HTTPServer, error) {
	s := &HTTPServer{
		opts:   o,
		auth:   as,
		files:  fs,
		health: hs,
		logger: l.With("module", "http_server"),
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.SetHTMLTemplate(tmpl)
	e.Use(s.requestID, s.recovery, s.accessLog)
	s.routes(e)
	s.engine = e

	return s, nil
}

func (s *HTTPServer) routes(e *gin.Engine) {
	e.GET("/health", s.handleHealth)

	e.GET("/gui", s.handleGUI)
	if s.opts.RequireAuthForUpload {
		e.POST("/upload", s.requireAPIAuth, s.handleUpload)
	} else {
		e.POST("/upload", s.handleUpload)
	}
	e.GET("/cdn/:filename", s.handleServe)
	e.GET("/library", s.handleLibrary)

	e.GET("/login", s.handleLoginPage)
	e.POST("/login", s.sameOrigin, s.handleLogin)
	e.POST("/logout", s.sameOrigin, s.handleLogout)

	admin := e.Group("/admin")
	admin.GET("", s.requirePageSession, s.handleAdmin)
	admin.DELETE("/delete/:filename", s.requireAPIAuth, s.handleDelete)

	api := e.Group("/api")
	api.POST("/login", s.handleAPILogin)
	api.POST("/logout", s.requireAPIAuth, s.handleAPILogout)
	api.GET("/files", s.handleAPIList)
	api.DELETE("/files/:filename", s.requireAPIAuth, s.handleDelete)
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
