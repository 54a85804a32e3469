// Package syncq holds remote mutations that failed while offline and replays
// them once connectivity returns.
package syncq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"musicsim/internal/store"
)

const (
	queueKey = "musicsim_offline_queue"

	// MaxEntries bounds the queue; the oldest entry is evicted first.
	MaxEntries = 50
)

type Request struct {
	Method         string            `json:"method"`
	Path           string            `json:"path"`
	Body           json.RawMessage   `json:"body,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Timestamp      int64             `json:"timestamp"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// Transport replays one request. *remote.Client satisfies this.
type Transport interface {
	Do(ctx context.Context, method, path string, body json.RawMessage) error
}

type Queue struct {
	mu  sync.Mutex
	kv  store.KV
	log *slog.Logger
}

func New(kv store.KV, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{kv: kv, log: logger}
}

func (q *Queue) load(ctx context.Context) ([]Request, error) {
	raw, err := q.kv.Get(ctx, queueKey)
	if errors.Is(err, store.ErrNotFound) {
		return []Request{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue: %w", err)
	}
	var out []Request
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		q.log.Warn("offline queue corrupt, resetting", "err", err)
		return []Request{}, nil
	}
	return out, nil
}

func (q *Queue) save(ctx context.Context, reqs []Request) error {
	raw, err := json.Marshal(reqs)
	if err != nil {
		return err
	}
	return q.kv.Set(ctx, queueKey, string(raw))
}

// Enqueue appends a failed mutation. When the queue is full the oldest
// entries are dropped to make room.
func (q *Queue) Enqueue(ctx context.Context, req Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	reqs, err := q.load(ctx)
	if err != nil {
		return err
	}
	reqs = append(reqs, req)
	if len(reqs) > MaxEntries {
		reqs = reqs[len(reqs)-MaxEntries:]
	}
	return q.save(ctx, reqs)
}

// Len reports the number of queued requests.
func (q *Queue) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	reqs, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(reqs), nil
}

// Flush replays every queued request once. Individual failures are logged
// and skipped; the queue is cleared after the pass regardless, so a request
// gets exactly one replay attempt.
func (q *Queue) Flush(ctx context.Context, transport Transport) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	reqs, err := q.load(ctx)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}
	replayed := 0
	for _, r := range reqs {
		if err := transport.Do(ctx, r.Method, r.Path, r.Body); err != nil {
			q.log.Warn("offline replay failed", "method", r.Method, "path", r.Path, "err", err)
			continue
		}
		replayed++
	}
	if err := q.kv.Remove(ctx, queueKey); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	q.log.Info("offline queue flushed", "queued", len(reqs), "replayed", replayed)
	return nil
}
