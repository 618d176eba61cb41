package model

import (
	"time"

	"github.com/google/uuid"
)

func NewResult() Result {
	return Result{ID: uuid.New()}
}

// Result is a finished multiplayer match.
type Result struct {
	ID         uuid.UUID         `json:"id"`
	RoomID     string            `json:"roomID"`
	Mode       string            `json:"mode"`
	Level      int               `json:"level"`
	Seed       int64             `json:"seed"`
	Winner     string            `json:"winner"`
	Scores     map[string]int    `json:"scores"`
	FoundWords map[string]string `json:"foundWords"`
	TotalWords int               `json:"totalWords"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// PlayerStats aggregates every result a player took part in.
type PlayerStats struct {
	Name         string    `json:"name"`
	Played       int       `json:"played"`
	Wins         int       `json:"wins"`
	TeamGames    int       `json:"teamGames"`
	TotalScore   int       `json:"totalScore"`
	BestScore    int       `json:"bestScore"`
	AvgScore     int       `json:"avgScore"`
	WordsFound   int       `json:"wordsFound"`
	LastPlayedAt time.Time `json:"lastPlayedAt"`
}
