package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/bloops-games/wordmix/internal/database"
	"github.com/bloops-games/wordmix/internal/database/save/model"
	bolt "go.etcd.io/bbolt"
)

const bucket = "saves"

var (
	ErrNotFound           = fmt.Errorf("save slot not found")
	ErrUnsupportedVersion = fmt.Errorf("unsupported save version")
)

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// Put stores slot under its name, replacing any previous save.
func (db *DB) Put(slot model.Slot) error {
	tx, err := db.sDB.DB.Begin(true)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer tx.Rollback() // nolint

	b, err := tx.CreateBucketIfNotExists([]byte(bucket))
	if err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}

	bytes, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := b.Put([]byte(slot.Name), bytes); err != nil {
		return fmt.Errorf("put to bucket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (db *DB) Fetch(name string) (model.Slot, error) {
	var slot model.Slot
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &slot); err != nil {
			return fmt.Errorf("json unmarshal: %w", err)
		}
		return nil
	}); err != nil {
		return slot, fmt.Errorf("view transaction: %w", err)
	}

	if slot.Version != model.Version {
		return slot, fmt.Errorf("%w: %d", ErrUnsupportedVersion, slot.Version)
	}

	return slot, nil
}

// List returns all slots, most recently saved first.
func (db *DB) List() ([]model.Slot, error) {
	var list []model.Slot
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var slot model.Slot
			if err := json.Unmarshal(v, &slot); err != nil {
				return fmt.Errorf("json unmarshal %s: %w", k, err)
			}
			list = append(list, slot)
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction: %w", err)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].SavedAt.After(list[j].SavedAt)
	})

	return list, nil
}

func (db *DB) Delete(name string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil || b.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(name))
	}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update transaction: %w", err)
	}

	return nil
}
