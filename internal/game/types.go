package game

import "time"

type GameState struct {
	ArtistName      string         `json:"artist_name"`
	Genre           string         `json:"genre"`
	Difficulty      string         `json:"difficulty"`
	Week            int            `json:"week"`
	CurrentDate     time.Time      `json:"current_date"`
	StartDate       time.Time      `json:"start_date"`
	PlayerStats     PlayerStats    `json:"player_stats"`
	Staff           []StaffMember  `json:"staff,omitempty"`
	LabelContract   *LabelContract `json:"label_contract,omitempty"`
	ScenarioHistory []string       `json:"scenario_history,omitempty"`
	Logs            []LogEntry     `json:"logs"`
}

type PlayerStats struct {
	CashMicros     int64 `json:"cash_micros"`
	Fame           int   `json:"fame"`
	WellBeing      int   `json:"well_being"`
	Hype           int   `json:"hype"`
	CareerProgress int   `json:"career_progress"`
}

type LogEntry struct {
	Week      int       `json:"week"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type StaffMember struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	WeeklyFeeMicros int64  `json:"weekly_fee_micros"`
	HiredWeek       int    `json:"hired_week"`
}

type LabelContract struct {
	LabelName     string `json:"label_name"`
	AdvanceMicros int64  `json:"advance_micros"`
	RoyaltyBps    int32  `json:"royalty_bps"`
	Albums        int    `json:"albums"`
	SignedWeek    int    `json:"signed_week"`
}

type CalendarPosition struct {
	Week  int `json:"week"`
	Month int `json:"month"`
	Year  int `json:"year"`
}
