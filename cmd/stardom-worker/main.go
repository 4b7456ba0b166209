package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stardom/internal/config"
	"stardom/internal/game"
	"stardom/internal/metrics"
	"stardom/internal/notify"
	"stardom/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
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
	svc := game.NewService(saves, game.NewEngine(tuning, logger), logger)
	if cfg.Seed != 0 {
		svc.Seed(cfg.Seed)
	}

	sinks := notify.Fanout{notify.NewLog(logger)}
	if cfg.DiscordToken != "" {
		d, err := notify.NewDiscord(cfg.DiscordToken, cfg.DiscordChannel)
		if err != nil {
			logger.Error("discord init failed", "err", err)
			os.Exit(1)
		}
		sinks = append(sinks, d)
	}
	if cfg.WhatsAppDB != "" {
		wa, err := notify.NewWhatsApp(ctx, cfg.WhatsAppDB, cfg.WhatsAppTo, os.Stdout)
		if err != nil {
			logger.Error("whatsapp init failed", "err", err)
			os.Exit(1)
		}
		defer wa.Close()
		sinks = append(sinks, wa)
	}
	svc.SetPublisher(sinks)

	metrics.RegisterMetrics()
	advance := func() {
		started := time.Now()
		reports, err := svc.AdvanceAll(ctx)
		metrics.ObserveAdvance(started)
		for _, r := range reports {
			metrics.ObserveWeek(r)
		}
		if err != nil {
			logger.Error("advance all failed", "err", err, "advanced", len(reports))
			return
		}
		logger.Info("weekly pass complete", "games", len(reports), "took", time.Since(started).String())
	}

	if cfg.RunOnce {
		advance()
		logger.Info("worker run-once completed")
		return
	}

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	ticker := time.NewTicker(cfg.WeekEvery)
	defer ticker.Stop()

	logger.Info("worker started", "week_every", cfg.WeekEvery.String(), "sinks", len(sinks), "metrics_addr", cfg.MetricsAddr)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			advance()
		}
	}
}
