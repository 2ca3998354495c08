package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/config"
	"task-tracker/internal/logging"
	"task-tracker/internal/routes"
	"task-tracker/internal/services"
	"task-tracker/internal/sessions"
)

func main() {
	os.Exit(serve())
}

// serve はサーバーを起動し、終了コードを返します。defer をすべて実行してから終了させるためです。
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to load config")
		return 1
	}

	logFile, err := logging.Init(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to initialize logger")
		return 1
	}
	defer logFile.Close()

	gin.SetMode(cfg.Server.GinMode)

	if err := run(cfg); err != nil {
		logging.Logger.WithError(err).Error("Server stopped with error")
		return 1
	}
	return 0
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer st.Close()

	signer, err := sessions.NewTokenSigner(cfg.Session.Secret)
	if err != nil {
		return err
	}
	manager := sessions.NewManager(st.sessions, signer, cfg.Session.TTL)

	router, err := routes.SetupRouter(routes.Deps{
		AuthService:    services.NewAuthService(st.users, services.NewPasswordHasher(cfg.Auth.BcryptCost)),
		TaskService:    services.NewTaskService(st.tasks),
		Sessions:       manager,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookie:   cfg.Session.CookieSecure,
		Ping:           st.ping,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logging.Logger.WithField("signal", sig.String()).Info("Shutting down server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
