package syncq

import (
	"context"
	"log/slog"
	"time"
)

// Prober answers whether the remote gateway is currently reachable.
type Prober interface {
	Healthy(ctx context.Context) bool
}

// Watcher polls connectivity and fires one queue flush per offline-to-online
// transition. It is the only component in the process that observes
// connectivity.
type Watcher struct {
	queue     *Queue
	transport Transport
	prober    Prober
	interval  time.Duration
	log       *slog.Logger
}

func NewWatcher(queue *Queue, transport Transport, prober Prober, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{queue: queue, transport: transport, prober: prober, interval: interval, log: logger}
}

// Run blocks until ctx is done. Call it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	online := w.prober.Healthy(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := w.prober.Healthy(ctx)
			if now && !online {
				w.log.Info("connectivity restored, flushing offline queue")
				if err := w.queue.Flush(ctx, w.transport); err != nil {
					w.log.Warn("offline queue flush failed", "err", err)
				}
			}
			online = now
		}
	}
}
