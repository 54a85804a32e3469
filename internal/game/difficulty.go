package game

import "math"

type Difficulty struct {
	Name                 string
	StartingCashMicros   int64
	StartingWellBeing    int
	WeeklyExpensesMicros int64
	FameGainMult         float64
	RewardMult           float64
	HypeDecayPerWeek     int
}

var difficulties = []Difficulty{
	{
		Name:                 "easy",
		StartingCashMicros:   10_000 * MicrosPerDollar,
		StartingWellBeing:    90,
		WeeklyExpensesMicros: 400 * MicrosPerDollar,
		FameGainMult:         1.25,
		RewardMult:           1.25,
		HypeDecayPerWeek:     2,
	},
	{
		Name:                 "normal",
		StartingCashMicros:   5_000 * MicrosPerDollar,
		StartingWellBeing:    80,
		WeeklyExpensesMicros: 600 * MicrosPerDollar,
		FameGainMult:         1.0,
		RewardMult:           1.0,
		HypeDecayPerWeek:     4,
	},
	{
		Name:                 "hard",
		StartingCashMicros:   2_500 * MicrosPerDollar,
		StartingWellBeing:    70,
		WeeklyExpensesMicros: 850 * MicrosPerDollar,
		FameGainMult:         0.75,
		RewardMult:           0.8,
		HypeDecayPerWeek:     6,
	},
}

func DifficultyByName(name string) (Difficulty, error) {
	for _, d := range difficulties {
		if d.Name == name {
			return d, nil
		}
	}
	return Difficulty{}, ErrInvalidDifficulty
}

// ScaleFame applies the difficulty fame multiplier to a base gain, rounding
// half away from zero.
func (d Difficulty) ScaleFame(base int) int {
	return int(math.Round(float64(base) * d.FameGainMult))
}

// ScaleReward applies the difficulty reward multiplier to a cash amount.
func (d Difficulty) ScaleReward(micros int64) int64 {
	return int64(math.Round(float64(micros) * d.RewardMult))
}
