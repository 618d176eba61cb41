package model

import (
	"time"

	"github.com/bloops-games/wordmix/internal/solo"
)

// Version of the slot layout; slots with another version are refused.
const Version = 1

func NewSlot(name string, state solo.State, score int, now time.Time) Slot {
	return Slot{Name: name, State: state, Score: score, SavedAt: now, Version: Version}
}

type Slot struct {
	Name    string     `json:"name"`
	State   solo.State `json:"state"`
	Score   int        `json:"score"`
	SavedAt time.Time  `json:"savedAt"`
	Version int        `json:"version"`
}
