package database

import (
	"encoding/json"
	"fmt"

	"github.com/bloops-games/wordmix/internal/byteutil"
	"github.com/bloops-games/wordmix/internal/cache"
	"github.com/bloops-games/wordmix/internal/database"
	"github.com/bloops-games/wordmix/internal/database/result/model"
	bolt "go.etcd.io/bbolt"
)

const (
	prefix     = "player:"
	teamWinner = "Team"
)

var ErrNotFound = fmt.Errorf("not found")

func New(db *database.DB, cache cache.Cache[string, []model.Result]) *DB {
	return &DB{sDB: db, cache: cache}
}

// DB keeps one bucket per player holding every result the player took part
// in, keyed by finish time so iteration is chronological.
type DB struct {
	sDB *database.DB

	cache cache.Cache[string, []model.Result]
}

func (db *DB) bucket(player string) []byte {
	return []byte(prefix + player)
}

func (db *DB) Add(r model.Result) error {
	bytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() // nolint

	key := byteutil.TimeKey(r.FinishedAt, r.ID[:])
	for player := range r.Scores {
		b, err := tx.CreateBucketIfNotExists(db.bucket(player))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put(key, bytes); err != nil {
			return fmt.Errorf("put to bucket: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if db.cache != nil {
		for player := range r.Scores {
			db.cache.Delete(player)
		}
	}

	return nil
}

// FetchByPlayer returns the player's results, oldest first.
func (db *DB) FetchByPlayer(player string) ([]model.Result, error) {
	if db.cache != nil {
		if v, ok := db.cache.Get(player); ok {
			return v, nil
		}
	}

	var list []model.Result
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(db.bucket(player))
		if b == nil {
			return ErrNotFound
		}

		if err := b.ForEach(func(k, v []byte) error {
			var r model.Result
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("json unmarshal error, %w", err)
			}
			list = append(list, r)
			return nil
		}); err != nil {
			return fmt.Errorf("bucket for each: %w", err)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(player, list)
	}

	return list, nil
}

func (db *DB) FetchStats(player string) (model.PlayerStats, error) {
	stats := model.PlayerStats{Name: player}
	list, err := db.FetchByPlayer(player)
	if err != nil {
		return stats, fmt.Errorf("fetch by player: %w", err)
	}

	for _, r := range list {
		score := r.Scores[player]
		stats.Played++
		stats.TotalScore += score
		if score > stats.BestScore {
			stats.BestScore = score
		}
		switch r.Winner {
		case player:
			stats.Wins++
		case teamWinner:
			stats.TeamGames++
		}
		for _, finder := range r.FoundWords {
			if finder == player {
				stats.WordsFound++
			}
		}
		if r.FinishedAt.After(stats.LastPlayedAt) {
			stats.LastPlayedAt = r.FinishedAt
		}
	}

	if stats.Played > 0 {
		stats.AvgScore = stats.TotalScore / stats.Played
	}

	return stats, nil
}
