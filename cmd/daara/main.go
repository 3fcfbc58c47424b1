package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"daara/internal/cache"
	"daara/internal/cli"
	apphttp "daara/internal/http"
	"daara/internal/log"
	"daara/internal/services"
	"daara/internal/storage"
)

const janitorInterval = time.Minute

var openBackend = cli.OpenBackend

func main() {
	cli.LoadEnvFile()
	os.Exit(run())
}

// run serves until the context is cancelled or the server fails, and returns
// the process exit code. Deferred cleanup always runs before it returns.
func run() int {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid configuration", log.FieldError, err.Error())
		return 1
	}
	logger := cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	be, err := openBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldBackend, cfg.DataBackend, log.FieldError, err.Error())
		return 1
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	ledger, err := services.NewLedgerService(ctx, storage.NewRepository(be.Store), logger,
		services.WithViewCache(cfg.QueryCacheSize, cfg.QueryCacheTTL))
	if err != nil {
		logger.Error("Failed to load ledger", log.FieldOperation, log.OpLoad, log.FieldError, err.Error())
		return 1
	}

	srv := apphttp.NewServer(cfg.ListenAddr, ledger, logger)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	cacheLog := logger.WithComponent(log.ComponentCache)
	janitor := cache.NewJanitor(func(removed int) {
		cacheLog.Debug("Cache cleanup completed", "entries_removed", removed)
	}, ledger.Views(), srv.Limiter())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting daara server", "addr", cfg.ListenAddr, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return janitor.Run(gctx, janitorInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		return 1
	}
	logger.Info("Server stopped gracefully")
	return 0
}
