package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/config"
	"github.com/hamed0406/statuswatch/internal/httpapi"
	"github.com/hamed0406/statuswatch/internal/logging"
	"github.com/hamed0406/statuswatch/internal/monitor"
	"github.com/hamed0406/statuswatch/internal/probe"
	"github.com/hamed0406/statuswatch/internal/repo"
	"github.com/hamed0406/statuswatch/internal/repo/memory"
	"github.com/hamed0406/statuswatch/internal/repo/postgres"
	"github.com/hamed0406/statuswatch/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repo.ResultStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres_open", zap.Error(err))
		}
		defer pg.Close()
		store = pg
		logger.Info("store_postgres")
	} else {
		store = memory.New()
		logger.Warn("store_memory", zap.String("hint", "history will not survive a restart; set DATABASE_URL"))
	}

	specs, err := config.LoadEndpointSpecs(cfg.EndpointsPath)
	if err != nil {
		logger.Fatal("endpoints_load", zap.String("path", cfg.EndpointsPath), zap.Error(err))
	}

	mon := monitor.New(logger, store, probe.NewHTTPExecutor(), cfg.ShutdownGrace)
	if err := mon.LoadEndpoints(specs); err != nil {
		// invalid specs are skipped, valid ones keep running
		logger.Warn("endpoints_rejected", zap.Error(err))
	}
	defer mon.Stop()

	janitor := scheduler.NewJanitor(logger, store, cfg.Retention, cfg.PurgeInterval)
	go janitor.Run(ctx)

	api := httpapi.NewServer(logger, mon)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_serve", zap.Error(err))
	}
	logger.Info("api_stopped")
}
