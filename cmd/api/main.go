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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/config"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/state/autohide"
	"storefront/internal/state/session"
	"storefront/internal/timer"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.Named("api")

	ctx := context.Background()
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open backends", zap.Error(err))
	}
	defer b.Close()

	sessions := session.NewManager(session.Deps{
		Store:     b.store,
		AuthAPI:   b.authAPI,
		Scheduler: timer.Real{},
		Navbar: autohide.Config{
			TopThreshold:  cfg.Navbar.TopThreshold,
			HideThreshold: cfg.Navbar.HideThreshold,
			HideDelay:     cfg.Navbar.HideDelay,
		},
		NavigationReset: cfg.NavigationReset,
		IdleTTL:         cfg.SessionIdleTTL,
		Logger:          logger.Named("session"),
	})
	defer sessions.Close()

	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), httpserver.Deps{
		Sessions:    sessions,
		ProductSvc:  b.products,
		CategorySvc: b.categories,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	var background errgroup.Group
	background.Go(func() error { return sessions.Run(bgCtx) })
	if b.purge != nil {
		background.Go(func() error { return purgeLoop(bgCtx, b.purge, logger) })
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}

	stopBackground()
	if err := background.Wait(); err != nil {
		logger.Warn("background worker stopped with error", zap.Error(err))
	}
}

// purgeLoop drops expired revocation entries once an hour.
func purgeLoop(ctx context.Context, purge func(context.Context) (int64, error), logger *zap.Logger) error {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Warn("purge revoked tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged revoked tokens", zap.Int64("count", n))
			}
		}
	}
}
