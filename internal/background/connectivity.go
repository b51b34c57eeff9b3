package background

import (
	"context"
	"log/slog"
	"time"
)

// Pinger probes reachability of the remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher detects offline-to-online transitions. The drain fires on the
// transition edge only; while continuously online or continuously
// offline nothing happens. This is the daemon's stand-in for the
// browser's online event.
type Watcher struct {
	pinger   Pinger
	period   time.Duration
	onOnline func(ctx context.Context)

	// assume online at startup: HandleInstalled already ran its drain.
	online bool
}

func NewWatcher(pinger Pinger, period time.Duration, onOnline func(ctx context.Context)) *Watcher {
	return &Watcher{pinger: pinger, period: period, onOnline: onOnline, online: true}
}

func (w *Watcher) Run(ctx context.Context) {
	slog.Info("Connectivity watcher started", "period", w.period)
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Connectivity watcher stopped")
			return
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

func (w *Watcher) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := w.pinger.Ping(probeCtx)
	cancel()

	nowOnline := err == nil
	switch {
	case nowOnline && !w.online:
		slog.Info("Back online, syncing offline actions")
		w.online = true
		w.onOnline(ctx)
	case !nowOnline && w.online:
		slog.Info("Connectivity lost", "error", err)
		w.online = false
	}
}
