package game

import (
	"errors"
	"testing"
	"time"
)

func TestValidateArtistName(t *testing.T) {
	valid := []string{"MC Gopher", "Nova-9", "D'Angelo Jr."}
	for _, name := range valid {
		if err := ValidateArtistName(name); err != nil {
			t.Fatalf("expected name %q to be valid: %v", name, err)
		}
	}

	invalid := []string{"", "x", "way_too_weird!!", "this name is much much longer than thirty two chars"}
	for _, name := range invalid {
		if err := ValidateArtistName(name); err == nil {
			t.Fatalf("expected name %q to fail", name)
		}
	}
}

func TestCalendar(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		weeks int
		want  CalendarPosition
	}{
		{weeks: 0, want: CalendarPosition{Week: 1, Month: 1, Year: 1}},
		{weeks: 3, want: CalendarPosition{Week: 4, Month: 1, Year: 1}},
		{weeks: 4, want: CalendarPosition{Week: 1, Month: 2, Year: 1}},
		{weeks: 47, want: CalendarPosition{Week: 4, Month: 12, Year: 1}},
		{weeks: 48, want: CalendarPosition{Week: 1, Month: 1, Year: 2}},
		{weeks: 100, want: CalendarPosition{Week: 1, Month: 2, Year: 3}},
	}
	for _, tc := range tests {
		current := start.AddDate(0, 0, tc.weeks*DaysPerWeek)
		got := Calendar(current, start)
		if got != tc.want {
			t.Fatalf("weeks=%d got=%+v want=%+v", tc.weeks, got, tc.want)
		}
	}
}

func TestCareerProgressPercent(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := CareerProgressPercent(start, start); got != 0 {
		t.Fatalf("progress at start = %d, want 0", got)
	}
	halfway := start.AddDate(0, 0, CareerYears*WeeksPerYear/2*DaysPerWeek)
	if got := CareerProgressPercent(halfway, start); got != 50 {
		t.Fatalf("progress at halfway = %d, want 50", got)
	}
	past := start.AddDate(0, 0, (CareerYears+2)*WeeksPerYear*DaysPerWeek)
	if got := CareerProgressPercent(past, start); got != 100 {
		t.Fatalf("progress past end = %d, want clamped 100", got)
	}
	if got := CareerProgressPercent(start.AddDate(0, 0, -30), start); got != 0 {
		t.Fatalf("progress before start = %d, want 0", got)
	}
}

func TestDifficultyScaling(t *testing.T) {
	easy, err := DifficultyByName("easy")
	if err != nil {
		t.Fatalf("easy: %v", err)
	}
	hard, err := DifficultyByName("hard")
	if err != nil {
		t.Fatalf("hard: %v", err)
	}
	if easy.StartingCashMicros <= hard.StartingCashMicros {
		t.Fatalf("easy starting cash %d should exceed hard %d", easy.StartingCashMicros, hard.StartingCashMicros)
	}
	if got := easy.ScaleFame(8); got != 10 {
		t.Fatalf("easy fame scale got %d want 10", got)
	}
	if got := hard.ScaleReward(1000 * MicrosPerDollar); got != 800*MicrosPerDollar {
		t.Fatalf("hard reward scale got %d want %d", got, 800*MicrosPerDollar)
	}
	if _, err := DifficultyByName("nightmare"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestAdvanceWeek(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state, err := NewGameState("MC Gopher", "hip-hop", "normal", now)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	state.Staff = []StaffMember{{Name: "Sam", Role: "manager", WeeklyFeeMicros: 200 * MicrosPerDollar}}
	state.PlayerStats.Hype = 50

	before := state.PlayerStats.CashMicros
	if err := AdvanceWeek(&state, now); err != nil {
		t.Fatalf("advance: %v", err)
	}
	wantSpend := int64(600+200) * MicrosPerDollar
	if got := before - state.PlayerStats.CashMicros; got != wantSpend {
		t.Fatalf("spend got %d want %d", got, wantSpend)
	}
	if state.Week != 2 {
		t.Fatalf("week got %d want 2", state.Week)
	}
	if state.PlayerStats.Hype != 46 {
		t.Fatalf("hype got %d want 46", state.PlayerStats.Hype)
	}
	if len(state.Logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(state.Logs))
	}

	state.PlayerStats.CareerProgress = 100
	if err := AdvanceWeek(&state, now); !errors.Is(err, ErrCareerOver) {
		t.Fatalf("expected ErrCareerOver, got %v", err)
	}
}

func TestAdvanceWeeksReportsEndOnce(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state, err := NewGameState("MC Gopher", "hip-hop", "normal", now)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	// One week away from the end of the career.
	state.StartDate = now.AddDate(0, 0, -(CareerYears*WeeksPerYear-1)*DaysPerWeek)
	state.PlayerStats.CareerProgress = CareerProgressPercent(state.CurrentDate, state.StartDate)
	if state.PlayerStats.CareerProgress >= 100 {
		t.Fatalf("setup: career already over at %d%%", state.PlayerStats.CareerProgress)
	}

	ended, err := AdvanceWeeks(&state, 1, now)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !ended {
		t.Fatal("crossing into completion must report ended")
	}

	// A later invocation on the finished career must not report the end
	// again; it did not finish anything.
	ended, err = AdvanceWeeks(&state, 1, now)
	if !errors.Is(err, ErrCareerOver) {
		t.Fatalf("expected ErrCareerOver, got %v", err)
	}
	if ended {
		t.Fatal("finished career reported ended twice")
	}
}

func TestAdvanceWeeksStopsAtCompletion(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state, err := NewGameState("MC Gopher", "hip-hop", "normal", now)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	state.StartDate = now.AddDate(0, 0, -(CareerYears*WeeksPerYear-2)*DaysPerWeek)
	state.PlayerStats.CareerProgress = CareerProgressPercent(state.CurrentDate, state.StartDate)

	// Asking for more weeks than remain ends the career without running
	// past it.
	ended, err := AdvanceWeeks(&state, 10, now)
	if err != nil || !ended {
		t.Fatalf("ended=%v err=%v", ended, err)
	}
	if got := ElapsedWeeks(state.CurrentDate, state.StartDate); got != CareerYears*WeeksPerYear {
		t.Fatalf("advanced %d weeks, want exactly %d", got, CareerYears*WeeksPerYear)
	}
}
