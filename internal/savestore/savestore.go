// Package savestore orchestrates game-save persistence across the local
// durable medium and the optional remote gateway. Remote writes are best
// effort; the local write always happens and always completes before Save
// returns, so a Load issued right after a Save observes the new record.
package savestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"musicsim/internal/game"
	"musicsim/internal/remote"
	"musicsim/internal/savecodec"
	"musicsim/internal/store"
	"musicsim/internal/syncq"
)

const (
	// Reserved slots. "auto" is overwritten on every autosave and is the
	// only slot subject to expiry.
	AutoSlot  = "auto"
	QuickSlot = "quicksave"

	// AutosaveExpiry is a hard contract: an "auto" record older than this
	// is stale and discarded on read.
	AutosaveExpiry = 10 * time.Minute

	Version = "1.0.0"

	savesKey = "musicsim_saves"
)

// IsReservedSlot reports whether id names a slot the store manages itself.
// Manual saves must not land on reserved slots or they would be clobbered by
// the next autosave or quicksave.
func IsReservedSlot(id string) bool {
	return id == AutoSlot || id == QuickSlot
}

// SaveRecord is the persisted unit, keyed by slot ID under savesKey.
type SaveRecord struct {
	State     savecodec.SerializedGameState `json:"state"`
	Timestamp int64                         `json:"timestamp"`
	Version   string                        `json:"version"`
}

// SaveSlot is the listing projection shown in a load-game menu.
type SaveSlot struct {
	ID             string                `json:"id"`
	ArtistName     string                `json:"artist_name"`
	Genre          string                `json:"genre"`
	Date           game.CalendarPosition `json:"date"`
	Stats          game.PlayerStats      `json:"stats"`
	Timestamp      int64                 `json:"timestamp"`
	CareerProgress int                   `json:"career_progress"`
}

// Gateway is the remote surface the orchestrator needs. *remote.Client
// satisfies it; tests substitute fakes.
type Gateway interface {
	Save(ctx context.Context, req remote.SaveRequest) (remote.SaveSummary, error)
	Load(ctx context.Context, slot string) (remote.FullSave, error)
	List(ctx context.Context) ([]remote.SaveSummary, error)
	DeleteSlot(ctx context.Context, slot string) error
}

type Store struct {
	kv      store.KV
	gateway Gateway
	queue   *syncq.Queue
	log     *slog.Logger
	now     func() time.Time

	listGroup singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithGateway attaches the remote gateway. Without it the store runs local
// only (guest mode).
func WithGateway(g Gateway) Option {
	return func(s *Store) { s.gateway = g }
}

// WithQueue attaches the offline replay queue for connectivity failures.
func WithQueue(q *syncq.Queue) Option {
	return func(s *Store) { s.queue = q }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv store.KV, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists state under slot. Unless guest, the remote gateway is tried
// first; its failure never aborts the local write. Offline-classified remote
// failures are queued for replay.
func (s *Store) Save(ctx context.Context, state game.GameState, slot string, guest bool) error {
	serialized := savecodec.Serialize(state)
	ts := s.now().UnixMilli()

	if !guest && s.gateway != nil {
		req := remote.SaveRequest{
			SlotName:  slot,
			Timestamp: ts,
			Version:   Version,
			GameState: serialized,
		}
		if _, err := s.gateway.Save(ctx, req); err != nil {
			s.log.Warn("remote save failed, keeping local copy", "slot", slot, "err", err)
			s.maybeQueue(ctx, req, err)
		}
	}

	return s.writeLocal(ctx, slot, SaveRecord{State: serialized, Timestamp: ts, Version: Version})
}

func (s *Store) maybeQueue(ctx context.Context, req remote.SaveRequest, cause error) {
	if s.queue == nil || !remote.IsOffline(cause) {
		return
	}
	body, err := json.Marshal(req)
	if err != nil {
		return
	}
	qErr := s.queue.Enqueue(ctx, syncq.Request{
		Method:    "POST",
		Path:      "/v1/saves",
		Body:      body,
		Timestamp: s.now().UnixMilli(),
	})
	if qErr != nil {
		s.log.Warn("offline enqueue failed", "slot", req.SlotName, "err", qErr)
	}
}

// Load retrieves a slot, preferring the remote copy when a gateway is
// attached. A missing slot returns (nil, nil). An expired "auto" record is
// deleted and reported as missing.
func (s *Store) Load(ctx context.Context, slot string) (*game.GameState, error) {
	if s.gateway != nil {
		full, err := s.gateway.Load(ctx, slot)
		if err == nil {
			state := savecodec.Deserialize(full.State)
			return &state, nil
		}
		if !errors.Is(err, remote.ErrNotFound) {
			s.log.Warn("remote load failed, trying local", "slot", slot, "err", err)
		}
	}

	saves, err := s.readLocal(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := saves[slot]
	if !ok {
		return nil, nil
	}
	if slot == AutoSlot && s.expired(rec) {
		delete(saves, slot)
		if err := s.storeLocal(ctx, saves); err != nil {
			s.log.Warn("expired autosave cleanup failed", "err", err)
		}
		return nil, nil
	}
	state := savecodec.Deserialize(rec.State)
	return &state, nil
}

// List enumerates every known save, newest first. Remote summaries are
// hydrated best effort to fill in stats and progress; local-only slots are
// merged in; an expired local autosave is dropped and deleted. Concurrent
// calls collapse into one underlying scan.
func (s *Store) List(ctx context.Context) ([]SaveSlot, error) {
	v, err, _ := s.listGroup.Do("list", func() (any, error) {
		return s.list(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]SaveSlot), nil
}

func (s *Store) list(ctx context.Context) ([]SaveSlot, error) {
	seen := map[string]bool{}
	out := []SaveSlot{}

	if s.gateway != nil {
		summaries, err := s.gateway.List(ctx)
		if err != nil {
			s.log.Warn("remote list failed, local only", "err", err)
		} else {
			slots := make([]SaveSlot, len(summaries))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(4)
			for i, sum := range summaries {
				i, sum := i, sum
				slots[i] = SaveSlot{
					ID:         sum.SlotName,
					ArtistName: sum.ArtistName,
					Genre:      sum.Genre,
					Timestamp:  sum.Timestamp,
				}
				g.Go(func() error {
					full, err := s.gateway.Load(gctx, sum.SlotName)
					if err != nil {
						// Hydration is best effort; the summary row stands.
						return nil
					}
					state := savecodec.Deserialize(full.State)
					slots[i] = s.project(sum.SlotName, state, sum.Timestamp)
					return nil
				})
			}
			_ = g.Wait()
			for _, slot := range slots {
				seen[slot.ID] = true
				out = append(out, slot)
			}
		}
	}

	saves, err := s.readLocal(ctx)
	if err != nil {
		return nil, err
	}
	dirty := false
	for id, rec := range saves {
		if id == AutoSlot && s.expired(rec) {
			delete(saves, id)
			dirty = true
			continue
		}
		if seen[id] {
			continue
		}
		out = append(out, s.project(id, savecodec.Deserialize(rec.State), rec.Timestamp))
	}
	if dirty {
		if err := s.storeLocal(ctx, saves); err != nil {
			s.log.Warn("expired autosave cleanup failed", "err", err)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

// Delete removes a slot everywhere. Remote failure is swallowed; the local
// record is removed regardless. Deleting an absent slot is a no-op.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if s.gateway != nil {
		if err := s.gateway.DeleteSlot(ctx, slot); err != nil {
			s.log.Warn("remote delete failed", "slot", slot, "err", err)
		}
	}
	saves, err := s.readLocal(ctx)
	if err != nil {
		return err
	}
	if _, ok := saves[slot]; !ok {
		return nil
	}
	delete(saves, slot)
	return s.storeLocal(ctx, saves)
}

// Autosave writes the reserved "auto" slot.
func (s *Store) Autosave(ctx context.Context, state game.GameState, guest bool) error {
	return s.Save(ctx, state, AutoSlot, guest)
}

// Quicksave writes the reserved "quicksave" slot. Unlike the auto slot it
// never expires.
func (s *Store) Quicksave(ctx context.Context, state game.GameState, guest bool) error {
	return s.Save(ctx, state, QuickSlot, guest)
}

func (s *Store) expired(rec SaveRecord) bool {
	age := s.now().UnixMilli() - rec.Timestamp
	return age > AutosaveExpiry.Milliseconds()
}

func (s *Store) project(id string, state game.GameState, ts int64) SaveSlot {
	return SaveSlot{
		ID:             id,
		ArtistName:     state.ArtistName,
		Genre:          state.Genre,
		Date:           game.Calendar(state.CurrentDate, state.StartDate),
		Stats:          state.PlayerStats,
		Timestamp:      ts,
		CareerProgress: game.CareerProgressPercent(state.CurrentDate, state.StartDate),
	}
}

func (s *Store) readLocal(ctx context.Context) (map[string]SaveRecord, error) {
	raw, err := s.kv.Get(ctx, savesKey)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]SaveRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saves: %w", err)
	}
	saves := map[string]SaveRecord{}
	if err := json.Unmarshal([]byte(raw), &saves); err != nil {
		s.log.Warn("save namespace corrupt, treating as empty", "err", err)
		return map[string]SaveRecord{}, nil
	}
	return saves, nil
}

func (s *Store) storeLocal(ctx context.Context, saves map[string]SaveRecord) error {
	raw, err := json.Marshal(saves)
	if err != nil {
		return fmt.Errorf("encode saves: %w", err)
	}
	if err := s.kv.Set(ctx, savesKey, string(raw)); err != nil {
		return fmt.Errorf("write saves: %w", err)
	}
	return nil
}

func (s *Store) writeLocal(ctx context.Context, slot string, rec SaveRecord) error {
	saves, err := s.readLocal(ctx)
	if err != nil {
		return err
	}
	saves[slot] = rec
	return s.storeLocal(ctx, saves)
}
