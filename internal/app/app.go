package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	v1 "github.com/jaennil/tileview/internal/infrastructure/http/v1"
	"github.com/jaennil/tileview/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/tileview/internal/indexer"
	"github.com/jaennil/tileview/internal/repository/cache"
	"github.com/jaennil/tileview/internal/repository/store"
	"github.com/jaennil/tileview/internal/usecase"
	"github.com/jaennil/tileview/internal/viewlog"
	"github.com/jaennil/tileview/internal/watcher"
	"github.com/jaennil/tileview/pkg/config"
	"github.com/jaennil/tileview/pkg/http_server"
	"github.com/jaennil/tileview/pkg/logger"
	"github.com/jaennil/tileview/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)

	l.Info("starting tileview", "config", cfg)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
	}

	// The store failing to open is the only fatal storage condition.
	tileStore, err := store.NewSQLiteStore(cfg.Store.Path, cfg.Store.PoolSize, l)
	if err != nil {
		l.Fatal("failed to initialize tile store", "error", err)
	}
	defer tileStore.Close()

	hotCache, err := cache.New(cfg.Cache.Backend, cfg.Cache.Capacity, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	}, l)
	if err != nil {
		l.Fatal("failed to initialize hot cache", "error", err)
	}

	summaryCache := cache.NewSummaryCache()

	ix := indexer.New(tileStore, cfg.Tiles.Dir, cfg.Tiles.PreviewDir, l)
	if err = ix.Run(); err != nil {
		l.Fatal("bootstrap scan failed", "error", err)
	}

	w, err := watcher.New(tileStore, hotCache, summaryCache, cfg.Tiles.Debounce, l)
	if err != nil {
		l.Fatal("failed to create filesystem watcher", "error", err)
	}
	if err = w.Start(cfg.Tiles.Dir, cfg.Tiles.PreviewDir); err != nil {
		l.Fatal("failed to start filesystem watcher", "error", err)
	}
	defer w.Stop()

	views, err := viewlog.Open(cfg.ViewLog.Path)
	if err != nil {
		l.Fatal("failed to open view log", "error", err)
	}
	defer views.Close()

	tileUseCase := usecase.NewTileUseCase(tileStore, hotCache, summaryCache, l)

	validate := validator.New()
	h := handler.NewHandler(validate, tileUseCase, views)
	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled)

	server := http_server.NewServer(cfg.HTTP.Server, router)

	go func() {
		l.Info("starting http server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Error("server forced to shutdown", "error", err)
	}

	l.Info("server stopped")
}
