// Package server wires the CDN together: storage backend, session store,
// services, and the HTTP and gRPC servers, and runs them until a shutdown
// signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/cryptox"
	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/config"
	"github.com/KaityXD/choas-lib/internal/server/httpserver"
	"github.com/KaityXD/choas-lib/internal/server/registry"
	"github.com/KaityXD/choas-lib/internal/server/services"
	"github.com/KaityXD/choas-lib/internal/server/sessions"

	gs "github.com/KaityXD/choas-lib/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	httpServer *httpserver.HTTPServer
	grpcServer *gs.GRPCServer
	closers    []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, logCloser, err := logging.NewJSONLogger(c.LogFile, slog.LevelInfo)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	app := &App{config: c, logger: logger, closers: []io.Closer{logCloser}}

	if err := app.init(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	reg, err := app.openRegistry(ctx)
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}

	store, err := sessions.Open(ctx, c.SessionBackend, c.DatabaseDSN, c.SessionTTL, app.logger)
	if err != nil {
		return fmt.Errorf("sessions init error: %w", err)
	}
	if cl, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, cl)
	}

	secret := cryptox.NewSecret([]byte(c.AdminPassword))
	c.AdminPassword = ""
	if !secret.Enabled() {
		app.logger.Warn(ctx, "admin password is not set, admin login is disabled")
	}

	jwtKey := c.SecretKey
	if jwtKey == "" {
		jwtKey, err = common.MakeRandHexString(32)
		if err != nil {
			return err
		}
		app.logger.Warn(ctx, "secret key is not set, API tokens will not survive a restart")
	}

	as := services.NewAuthService(store, secret, []byte(jwtKey), c.SessionTTL, app.logger)
	fs := services.NewFileService(reg, services.NewQuota(c.DailyUploadLimit, nil), c.IOWorkers, c.PublicHost, app.logger)
	hs := services.NewHealthService(
		services.Component{Name: "storage", Pinger: fs},
		services.Component{Name: "sessions", Pinger: store},
	)

	app.httpServer, err = httpserver.NewHTTPServer(httpserver.Options{
		Addr:                 c.HTTPAddr,
		MaxUploadSize:        c.MaxUploadSize,
		SessionTTL:           c.SessionTTL,
		CookieSecure:         c.CookieSecure,
		RequireAuthForUpload: c.RequireAuthForUpload,
	}, app.logger, as, fs, hs)
	if err != nil {
		return fmt.Errorf("http init error: %w", err)
	}

	if c.GRPCAddr != "" {
		app.grpcServer = gs.NewGRPCServer(c.GRPCAddr, app.logger, hs)
	}
	return nil
}

func (app *App) openRegistry(ctx context.Context) (registry.Registry, error) {
	c := app.config

	if c.StorageBackend == config.StorageS3 {
		client, err := registry.NewS3Client(ctx, registry.S3Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return registry.NewS3Registry(client, c.S3Bucket, c.MaxUploadSize), nil
	}

	return registry.NewLocalRegistry(c.StorageDir, c.MaxUploadSize)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runServer runs one server and cancels the whole app if it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.httpServer.Run)
	}()

	if app.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
		}()
	}

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	app.close()
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
	app.closers = nil
}
