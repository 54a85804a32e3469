// Package savecodec converts the in-memory game state to and from its
// storage representation. The durable medium and the remote gateway both
// carry JSON, so every date field travels as an RFC 3339 string.
package savecodec

import (
	"time"

	"musicsim/internal/game"
)

// DefaultInstant is substituted for absent or unparseable date fields so
// that deserializing a malformed record stays deterministic.
var DefaultInstant = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type SerializedGameState struct {
	ArtistName      string              `json:"artist_name"`
	Genre           string              `json:"genre"`
	Difficulty      string              `json:"difficulty"`
	Week            int                 `json:"week"`
	CurrentDate     string              `json:"current_date"`
	StartDate       string              `json:"start_date"`
	PlayerStats     game.PlayerStats    `json:"player_stats"`
	Staff           []game.StaffMember  `json:"staff,omitempty"`
	LabelContract   *game.LabelContract `json:"label_contract,omitempty"`
	ScenarioHistory []string            `json:"scenario_history,omitempty"`
	Logs            []SerializedLog     `json:"logs"`
}

type SerializedLog struct {
	Week      int    `json:"week"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func Serialize(s game.GameState) SerializedGameState {
	out := SerializedGameState{
		ArtistName:      s.ArtistName,
		Genre:           s.Genre,
		Difficulty:      s.Difficulty,
		Week:            s.Week,
		CurrentDate:     s.CurrentDate.Format(time.RFC3339Nano),
		StartDate:       s.StartDate.Format(time.RFC3339Nano),
		PlayerStats:     s.PlayerStats,
		Staff:           s.Staff,
		LabelContract:   s.LabelContract,
		ScenarioHistory: s.ScenarioHistory,
		Logs:            make([]SerializedLog, 0, len(s.Logs)),
	}
	for _, l := range s.Logs {
		out.Logs = append(out.Logs, SerializedLog{
			Week:      l.Week,
			Category:  l.Category,
			Message:   l.Message,
			Timestamp: l.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return out
}

func Deserialize(s SerializedGameState) game.GameState {
	out := game.GameState{
		ArtistName:      s.ArtistName,
		Genre:           s.Genre,
		Difficulty:      s.Difficulty,
		Week:            s.Week,
		CurrentDate:     parseInstant(s.CurrentDate),
		StartDate:       parseInstant(s.StartDate),
		PlayerStats:     s.PlayerStats,
		Staff:           s.Staff,
		LabelContract:   s.LabelContract,
		ScenarioHistory: s.ScenarioHistory,
		Logs:            make([]game.LogEntry, 0, len(s.Logs)),
	}
	for _, l := range s.Logs {
		out.Logs = append(out.Logs, game.LogEntry{
			Week:      l.Week,
			Category:  l.Category,
			Message:   l.Message,
			Timestamp: parseInstant(l.Timestamp),
		})
	}
	return out
}

func parseInstant(v string) time.Time {
	if v == "" {
		return DefaultInstant
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return DefaultInstant
	}
	return t
}
