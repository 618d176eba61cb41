// Package level maps level numbers to grid configurations.
//
// Levels 1..5 come from the fixed tier table. Higher levels are
// extrapolated from the last tier: the grid grows by 2 every 3 extra levels
// (capped at MaxGridSize), one word is added per extra level (capped at
// MaxWordCount) and 30s are added per extra level.
package level

import (
	"fmt"
	"time"
)

const (
	MaxGridSize  = 24
	MaxWordCount = 25

	// ReverseFromTier is the first tier whose words may be written backwards.
	ReverseFromTier = 3
	// DiagonalFromTier is the first tier with diagonal placements.
	DiagonalFromTier = 2

	extraTimePerLevel = 30
	gridGrowthEvery   = 3
	gridGrowthStep    = 2
)

var ErrInvalidLevel = fmt.Errorf("invalid level")

type Config struct {
	Number           int  `json:"number"`
	GridSize         int  `json:"grid_size"`
	WordCount        int  `json:"word_count"`
	TimeLimitSeconds int  `json:"time_limit"`
	AllowDiagonal    bool `json:"allow_diagonal"`
	AllowReverse     bool `json:"allow_reverse"`
}

func (c Config) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitSeconds) * time.Second
}

type tier struct {
	gridSize  int
	wordCount int
	timeLimit int
}

var tiers = []tier{
	{gridSize: 8, wordCount: 5, timeLimit: 180},
	{gridSize: 10, wordCount: 7, timeLimit: 240},
	{gridSize: 12, wordCount: 9, timeLimit: 300},
	{gridSize: 14, wordCount: 11, timeLimit: 360},
	{gridSize: 16, wordCount: 14, timeLimit: 480},
}

// Resolve returns the configuration of level n.
func Resolve(n int) (Config, error) {
	if n < 1 {
		return Config{}, fmt.Errorf("%w: %d", ErrInvalidLevel, n)
	}

	if n <= len(tiers) {
		t := tiers[n-1]
		return Config{
			Number:           n,
			GridSize:         t.gridSize,
			WordCount:        t.wordCount,
			TimeLimitSeconds: t.timeLimit,
			AllowDiagonal:    n >= DiagonalFromTier,
			AllowReverse:     n >= ReverseFromTier,
		}, nil
	}

	last := tiers[len(tiers)-1]
	extra := n - len(tiers)

	return Config{
		Number:           n,
		GridSize:         min(MaxGridSize, last.gridSize+gridGrowthStep*(extra/gridGrowthEvery)),
		WordCount:        min(MaxWordCount, last.wordCount+extra),
		TimeLimitSeconds: last.timeLimit + extraTimePerLevel*extra,
		AllowDiagonal:    true,
		AllowReverse:     true,
	}, nil
}
