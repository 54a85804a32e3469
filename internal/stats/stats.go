// Package stats tracks career statistics across playthroughs. The blobs live
// in the same durable medium as the saves, under their own keys, and are on
// the legacy-migration allow-list.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"musicsim/internal/game"
	"musicsim/internal/store"
)

const (
	statisticsKey = "musicsim_statistics"
	careersKey    = "musicsim_careers"

	// Finished careers kept in history, newest first.
	maxCareerHistory = 25
)

type Statistics struct {
	CareersStarted   int   `json:"careers_started"`
	CareersCompleted int   `json:"careers_completed"`
	BestFame         int   `json:"best_fame"`
	BestCashMicros   int64 `json:"best_cash_micros"`
	TotalWeeksPlayed int   `json:"total_weeks_played"`
}

type CareerSummary struct {
	ArtistName string `json:"artist_name"`
	Genre      string `json:"genre"`
	Difficulty string `json:"difficulty"`
	Weeks      int    `json:"weeks"`
	FinalFame  int    `json:"final_fame"`
	FinalCash  int64  `json:"final_cash_micros"`
	EndedAt    int64  `json:"ended_at"`
}

type Tracker struct {
	mu  sync.Mutex
	kv  store.KV
	log *slog.Logger
}

func NewTracker(kv store.KV, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{kv: kv, log: logger}
}

func (t *Tracker) Statistics(ctx context.Context) (Statistics, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readStatistics(ctx)
}

func (t *Tracker) Careers(ctx context.Context) ([]CareerSummary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readCareers(ctx)
}

// RecordStart bumps the started-careers counter.
func (t *Tracker) RecordStart(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.readStatistics(ctx)
	if err != nil {
		return err
	}
	s.CareersStarted++
	return t.writeStatistics(ctx, s)
}

// RecordEnd folds a finished career into the aggregates and prepends it to
// the bounded history.
func (t *Tracker) RecordEnd(ctx context.Context, state game.GameState, endedAt int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.readStatistics(ctx)
	if err != nil {
		return err
	}
	s.CareersCompleted++
	s.TotalWeeksPlayed += state.Week
	if state.PlayerStats.Fame > s.BestFame {
		s.BestFame = state.PlayerStats.Fame
	}
	if state.PlayerStats.CashMicros > s.BestCashMicros {
		s.BestCashMicros = state.PlayerStats.CashMicros
	}
	if err := t.writeStatistics(ctx, s); err != nil {
		return err
	}

	careers, err := t.readCareers(ctx)
	if err != nil {
		return err
	}
	careers = append([]CareerSummary{{
		ArtistName: state.ArtistName,
		Genre:      state.Genre,
		Difficulty: state.Difficulty,
		Weeks:      state.Week,
		FinalFame:  state.PlayerStats.Fame,
		FinalCash:  state.PlayerStats.CashMicros,
		EndedAt:    endedAt,
	}}, careers...)
	if len(careers) > maxCareerHistory {
		careers = careers[:maxCareerHistory]
	}
	return t.writeCareers(ctx, careers)
}

func (t *Tracker) readStatistics(ctx context.Context) (Statistics, error) {
	raw, err := t.kv.Get(ctx, statisticsKey)
	if errors.Is(err, store.ErrNotFound) {
		return Statistics{}, nil
	}
	if err != nil {
		return Statistics{}, fmt.Errorf("read statistics: %w", err)
	}
	var s Statistics
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.log.Warn("statistics blob corrupt, resetting", "err", err)
		return Statistics{}, nil
	}
	return s, nil
}

func (t *Tracker) writeStatistics(ctx context.Context, s Statistics) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return t.kv.Set(ctx, statisticsKey, string(raw))
}

func (t *Tracker) readCareers(ctx context.Context) ([]CareerSummary, error) {
	raw, err := t.kv.Get(ctx, careersKey)
	if errors.Is(err, store.ErrNotFound) {
		return []CareerSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read careers: %w", err)
	}
	var out []CareerSummary
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.log.Warn("careers blob corrupt, resetting", "err", err)
		return []CareerSummary{}, nil
	}
	return out, nil
}

func (t *Tracker) writeCareers(ctx context.Context, careers []CareerSummary) error {
	raw, err := json.Marshal(careers)
	if err != nil {
		return err
	}
	return t.kv.Set(ctx, careersKey, string(raw))
}
