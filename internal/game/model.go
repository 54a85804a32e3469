package game

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	MicrosPerDollar = int64(1_000_000)

	// One in-game year is 48 weeks: 12 months of 4 weeks each.
	WeeksPerMonth = 4
	MonthsPerYear = 12
	WeeksPerYear  = WeeksPerMonth * MonthsPerYear

	CareerYears = 5

	// Clock days per in-game week. CurrentDate advances by this much when a
	// week is simulated.
	DaysPerWeek = 7

	MinStat = 0
	MaxStat = 100
)

var (
	ErrInvalidArtistName = errors.New("artist name must be 2-32 characters, letters/digits/spaces only")
	ErrInvalidDifficulty = errors.New("difficulty must be easy, normal or hard")
	ErrCareerOver        = errors.New("career is already over")
)

var artistNameRE = regexp.MustCompile(`^[a-zA-Z0-9 .'-]{2,32}$`)

func ValidateArtistName(name string) error {
	if !artistNameRE.MatchString(strings.TrimSpace(name)) {
		return ErrInvalidArtistName
	}
	return nil
}

func DollarsToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerDollar)))
}

func MicrosToDollars(v int64) float64 {
	return float64(v) / float64(MicrosPerDollar)
}

// ElapsedWeeks counts full in-game weeks between start and current based on
// wall-clock days. Negative spans clamp to zero.
func ElapsedWeeks(current, start time.Time) int {
	if current.Before(start) {
		return 0
	}
	days := int(current.Sub(start).Hours() / 24)
	return days / DaysPerWeek
}

// Calendar maps elapsed weeks onto the 48-week game calendar: week within
// month (1-4), month (1-12) and year (1-based).
func Calendar(current, start time.Time) CalendarPosition {
	elapsed := ElapsedWeeks(current, start)
	return CalendarPosition{
		Week:  elapsed%WeeksPerMonth + 1,
		Month: (elapsed/WeeksPerMonth)%MonthsPerYear + 1,
		Year:  elapsed/WeeksPerYear + 1,
	}
}

// CareerProgressPercent reports how far a career has advanced, using the same
// 48-week year as the calendar. Clamped to [0, 100].
func CareerProgressPercent(current, start time.Time) int {
	total := CareerYears * WeeksPerYear
	pct := ElapsedWeeks(current, start) * 100 / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func ClampStat(v int) int {
	if v < MinStat {
		return MinStat
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

func NewGameState(artistName, genre, difficulty string, now time.Time) (GameState, error) {
	if err := ValidateArtistName(artistName); err != nil {
		return GameState{}, err
	}
	diff, err := DifficultyByName(difficulty)
	if err != nil {
		return GameState{}, err
	}
	return GameState{
		ArtistName:  strings.TrimSpace(artistName),
		Genre:       strings.TrimSpace(genre),
		Difficulty:  diff.Name,
		Week:        1,
		CurrentDate: now,
		StartDate:   now,
		PlayerStats: PlayerStats{
			CashMicros: diff.StartingCashMicros,
			Fame:       0,
			WellBeing:  diff.StartingWellBeing,
			Hype:       0,
		},
		Logs: []LogEntry{},
	}, nil
}

// AdvanceWeeks simulates up to n weeks and reports whether the career
// reached completion during this call. A career that was already finished
// before the call returns ErrCareerOver with ended=false, so callers can
// record the end of a career exactly once.
func AdvanceWeeks(s *GameState, n int, now time.Time) (ended bool, err error) {
	for i := 0; i < n; i++ {
		if err := AdvanceWeek(s, now); err != nil {
			return false, err
		}
		if s.PlayerStats.CareerProgress >= 100 {
			return true, nil
		}
	}
	return false, nil
}

// AdvanceWeek applies one week's upkeep to the state in place: staff fees and
// scaled living expenses come out of cash, hype decays, and the calendar moves
// forward. Returns ErrCareerOver once progress reaches 100%.
func AdvanceWeek(s *GameState, now time.Time) error {
	if s.PlayerStats.CareerProgress >= 100 {
		return ErrCareerOver
	}
	diff, err := DifficultyByName(s.Difficulty)
	if err != nil {
		return err
	}

	expenses := diff.WeeklyExpensesMicros
	for _, m := range s.Staff {
		expenses += m.WeeklyFeeMicros
	}
	s.PlayerStats.CashMicros -= expenses
	s.PlayerStats.Hype = ClampStat(s.PlayerStats.Hype - diff.HypeDecayPerWeek)

	s.Week++
	s.CurrentDate = s.CurrentDate.AddDate(0, 0, DaysPerWeek)
	s.PlayerStats.CareerProgress = CareerProgressPercent(s.CurrentDate, s.StartDate)
	s.Logs = append(s.Logs, LogEntry{
		Week:      s.Week,
		Category:  "upkeep",
		Message:   fmt.Sprintf("weekly expenses: $%.2f", MicrosToDollars(expenses)),
		Timestamp: now,
	})
	return nil
}
