package savestore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"musicsim/internal/game"
)

// Runner autosaves the current game state on a fixed interval. The state
// snapshot is pulled through a callback so the runner never holds a stale
// copy.
type Runner struct {
	store    *Store
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	snapshot func() (game.GameState, bool)
	guest    bool
}

// NewRunner builds an autosave runner. snapshot returns the state to persist
// and false when there is nothing to save yet.
func NewRunner(store *Store, interval time.Duration, snapshot func() (game.GameState, bool), guest bool, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{store: store, interval: interval, snapshot: snapshot, guest: guest, log: logger}
}

// Run blocks until ctx is done, autosaving once per interval.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	r.mu.Lock()
	snapshot, guest := r.snapshot, r.guest
	r.mu.Unlock()

	state, ok := snapshot()
	if !ok {
		return
	}
	if err := r.store.Autosave(ctx, state, guest); err != nil {
		r.log.Warn("autosave failed", "err", err)
		return
	}
	r.log.Debug("autosave complete", "week", state.Week)
}
