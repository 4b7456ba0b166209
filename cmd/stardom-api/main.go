package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stardom/internal/api"
	"stardom/internal/config"
	"stardom/internal/game"
	"stardom/internal/metrics"
	"stardom/internal/notify"
	"stardom/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
	saves, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		logger.Error("open store failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer saves.Close()

	tuning, err := game.LoadTuning(cfg.TuningPath)
	if err != nil {
		logger.Error("load tuning failed", "path", cfg.TuningPath, "err", err)
		os.Exit(1)
	}

	gameSvc := game.NewService(saves, game.NewEngine(tuning, logger), logger)
	if cfg.Seed != 0 {
		gameSvc.Seed(cfg.Seed)
	}
	gameSvc.SetPublisher(notify.NewLog(logger))
	metrics.RegisterMetrics()

	server := api.New(logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("stardom api listening", "addr", cfg.Addr, "store", cfg.Store.Driver)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
