package stats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"musicsim/internal/game"
	"musicsim/internal/store"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	kv := store.NewFileKV(filepath.Join(t.TempDir(), "kv.json"))
	return NewTracker(kv, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func endedState(artist string, weeks, fame int, cash int64) game.GameState {
	return game.GameState{
		ArtistName:  artist,
		Genre:       "pop",
		Difficulty:  "normal",
		Week:        weeks,
		PlayerStats: game.PlayerStats{Fame: fame, CashMicros: cash},
	}
}

func TestTrackerAggregates(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)

	if err := tr.RecordStart(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tr.RecordStart(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	now := time.Now().UnixMilli()
	if err := tr.RecordEnd(ctx, endedState("A", 120, 40, 9_000), now); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := tr.RecordEnd(ctx, endedState("B", 240, 85, 4_000), now); err != nil {
		t.Fatalf("end: %v", err)
	}

	s, err := tr.Statistics(ctx)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if s.CareersStarted != 2 || s.CareersCompleted != 2 {
		t.Fatalf("counters = %+v", s)
	}
	if s.BestFame != 85 || s.BestCashMicros != 9_000 {
		t.Fatalf("bests = %+v", s)
	}
	if s.TotalWeeksPlayed != 360 {
		t.Fatalf("weeks = %d", s.TotalWeeksPlayed)
	}

	careers, err := tr.Careers(ctx)
	if err != nil {
		t.Fatalf("careers: %v", err)
	}
	if len(careers) != 2 || careers[0].ArtistName != "B" {
		t.Fatalf("history = %+v", careers)
	}
}

func TestCareerHistoryBounded(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)

	for i := 0; i < 30; i++ {
		state := endedState(fmt.Sprintf("artist-%d", i), 10, i, 0)
		if err := tr.RecordEnd(ctx, state, int64(i)); err != nil {
			t.Fatalf("end %d: %v", i, err)
		}
	}
	careers, err := tr.Careers(ctx)
	if err != nil {
		t.Fatalf("careers: %v", err)
	}
	if len(careers) != maxCareerHistory {
		t.Fatalf("history len = %d, want %d", len(careers), maxCareerHistory)
	}
	if careers[0].ArtistName != "artist-29" {
		t.Fatalf("newest first violated: %q", careers[0].ArtistName)
	}
}
