package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tewodrosm/scripture-notify/internal/api"
	"github.com/tewodrosm/scripture-notify/internal/background"
	"github.com/tewodrosm/scripture-notify/internal/config"
	"github.com/tewodrosm/scripture-notify/internal/device"
	"github.com/tewodrosm/scripture-notify/internal/notify"
	"github.com/tewodrosm/scripture-notify/internal/queue"
	"github.com/tewodrosm/scripture-notify/internal/schedule"
	"github.com/tewodrosm/scripture-notify/internal/storage"
	"github.com/tewodrosm/scripture-notify/internal/web"
)

func main() {
	// Setup structured logger (JSON handler)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load Config
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Init Storage tiers
	tiers := storage.Tiers{
		Local: storage.Open(cfg.Storage.LocalPath),
		Sync:  storage.Open(cfg.Storage.SyncPath),
	}

	// Device identity + remote client
	identity := device.NewIdentity(tiers.Local)
	client := api.NewClient(cfg.API.BaseURL, identity)

	// Alarms
	host := schedule.NewTimerHost()
	sched := schedule.NewScheduler(host, cfg.Delivery.PeriodMinutes, cfg.Delivery.SnoozeMinutes)

	// Notification platform
	var platform notify.Platform = notify.LogPlatform{}
	if cfg.Push.GatewayURL != "" {
		platform = notify.NewPushPlatform(cfg.Push.GatewayURL, cfg.Push.Token, cfg.Push.User)
	}

	pending := queue.New(tiers.Local)
	notifier := notify.NewManager(platform, client, pending, sched)
	orch := background.NewOrchestrator(tiers, identity, client, sched, notifier, pending)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host.OnAlarm(func(name string) {
		orch.HandleAlarm(ctx, name)
	})

	// Install flow: device id, alarms, one best-effort offline sync
	orch.HandleInstalled(ctx)

	go host.Run(ctx)

	watcher := background.NewWatcher(client, time.Duration(cfg.Connectivity.ProbeSeconds)*time.Second, orch.HandleOnline)
	go watcher.Run(ctx)

	// Messaging surface for UI contexts
	srv := web.NewServer(orch, client)
	httpServer := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: srv,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	cancel() // Stop alarm host and watcher

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}
