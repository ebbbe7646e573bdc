package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"warbler/config"
	"warbler/database"
	"warbler/handlers"
	"warbler/logger"
	"warbler/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("Warbler stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCloser := logger.InitLogger(logger.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Format: cfg.Log.Format,
	})
	defer logCloser.Close()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	store := handlers.NewSessionStore(cfg.SecretKey, cfg.IsProduction())
	handler, err := routes.SetupRoutes(routes.Dependencies{
		DB:                   db.DB,
		Store:                store,
		SlowRequestThreshold: cfg.SlowRequestThreshold,
		CSRFKey:              cfg.CSRFKey(),
		SecureCookies:        cfg.IsProduction(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("Shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logrus.Info("Server stopped")
	return nil
}
