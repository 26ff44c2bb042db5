package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockpress/internal/cache"
	"github.com/blockpress/internal/config"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/handler"
	"github.com/blockpress/internal/logging"
	"github.com/blockpress/internal/router"
	"github.com/blockpress/internal/service"
	"github.com/blockpress/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

// ensureSuperRoot creates the configured super-root admin once. A password
// below the minimum length is skipped with a warning so the server still starts.
func ensureSuperRoot(auth *service.AuthService, cfg config.AppConfig, logger *zap.Logger) error {
	if cfg.SuperRootUserName == "" || cfg.SuperRootPassword == "" {
		return nil
	}
	created, err := auth.EnsureUser(cfg.SuperRootUserName, cfg.SuperRootPassword)
	switch {
	case errors.Is(err, service.ErrPasswordTooShort):
		logger.Warn("super root user not created: SUPER_ROOT_PASSWORD is shorter than 8 characters",
			zap.String("username", cfg.SuperRootUserName))
		return nil
	case err != nil:
		return fmt.Errorf("create super root user: %w", err)
	case created:
		logger.Info("super root user created", zap.String("username", cfg.SuperRootUserName))
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := ensureSuperRoot(service.NewAuthService(gdb), cfg, logger); err != nil {
		return err
	}

	store, err := storage.New(cfg)
	if err != nil {
		return err
	}

	api := handler.NewAPI(handler.Options{
		DB:             gdb,
		Cache:          cache.New(cfg.CacheTTL),
		Storage:        store,
		Logger:         logger,
		SiteBaseURL:    cfg.SiteBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	r, err := router.SetupRouter(api, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("storage", cfg.Storage.Driver),
			zap.Duration("cache_ttl", cfg.CacheTTL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
