// Package solo runs a single-player game: one grid at a time, a level timer
// that can be paused, the set of found words and a score.
//
// The session is not safe for concurrent use.
package solo

import (
	"fmt"
	"math"
	"time"

	"github.com/bloops-games/wordmix/internal/grid"
	"github.com/bloops-games/wordmix/internal/level"
	"github.com/bloops-games/wordmix/internal/rng"
	"github.com/bloops-games/wordmix/internal/words"
)

const (
	pointsPerWord      = 100
	timeBonusPerSecond = 2
)

var (
	ErrNoLevel      = fmt.Errorf("no level started")
	ErrInvalidState = fmt.Errorf("invalid session state")
)

// Info describes a freshly started level.
type Info struct {
	Level            int      `json:"level"`
	GridSize         int      `json:"grid_size"`
	NumWords         int      `json:"num_words"`
	TimeLimitSeconds int      `json:"time_limit"`
	Seed             int64    `json:"seed"`
	Words            []string `json:"words"`
}

func New(pool *words.Pool, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{pool: pool, now: now}
}

type Session struct {
	pool *words.Pool
	now  func() time.Time

	active bool
	config level.Config
	seed   int64
	grid   *grid.Grid
	placed []grid.PlacedWord
	found  []string

	startedAt  time.Time
	pausedAt   time.Time
	pauseTotal time.Duration
	paused     bool
}

// StartLevel generates the grid for level n. A nil seed picks a random one.
// On error the current game is left as it was.
func (s *Session) StartLevel(n int, seed *int64) (Info, error) {
	config, err := level.Resolve(n)
	if err != nil {
		return Info{}, fmt.Errorf("resolve level: %w", err)
	}

	rnd := rng.NewRandom()
	if seed != nil {
		rnd = rng.New(*seed)
	}

	g, placed, err := grid.NewGenerator(rnd).Generate(grid.Config{
		Size:          config.GridSize,
		NumWords:      config.WordCount,
		AllowDiagonal: config.AllowDiagonal,
		AllowReverse:  config.AllowReverse,
	}, s.pool.Words())
	if err != nil {
		return Info{}, fmt.Errorf("generate level %d: %w", n, err)
	}

	s.active = true
	s.config = config
	s.seed = rnd.Seed()
	s.grid = g
	s.placed = placed
	s.found = nil
	s.startedAt = s.now()
	s.pausedAt = time.Time{}
	s.pauseTotal = 0
	s.paused = false

	return s.info(), nil
}

// NextLevel starts the level after the current one with a random seed.
func (s *Session) NextLevel() (Info, error) {
	next := 1
	if s.active {
		next = s.config.Number + 1
	}
	return s.StartLevel(next, nil)
}

func (s *Session) info() Info {
	return Info{
		Level:            s.config.Number,
		GridSize:         s.config.GridSize,
		NumWords:         len(s.placed),
		TimeLimitSeconds: s.config.TimeLimitSeconds,
		Seed:             s.seed,
		Words:            s.Words(),
	}
}

// CheckWord records text as found when it is one of the words to find and
// has not been found yet.
func (s *Session) CheckWord(text string) bool {
	if !s.active {
		return false
	}

	w := words.Normalize(text)
	if !s.isTarget(w) || s.isFound(w) {
		return false
	}

	s.found = append(s.found, w)
	return true
}

func (s *Session) isTarget(w string) bool {
	for _, p := range s.placed {
		if p.Word == w {
			return true
		}
	}
	return false
}

func (s *Session) isFound(w string) bool {
	for _, f := range s.found {
		if f == w {
			return true
		}
	}
	return false
}

func (s *Session) elapsed() time.Duration {
	now := s.now()
	d := now.Sub(s.startedAt) - s.pauseTotal
	if s.paused {
		d -= now.Sub(s.pausedAt)
	}
	return d
}

// RemainingTime returns the seconds left on the level timer. It is negative
// once the limit is exceeded and zero before any level has started.
func (s *Session) RemainingTime() float64 {
	if !s.active {
		return 0
	}
	return (s.config.TimeLimit() - s.elapsed()).Seconds()
}

func (s *Session) Pause() {
	if !s.active || s.paused {
		return
	}
	s.paused = true
	s.pausedAt = s.now()
}

func (s *Session) Resume() {
	if !s.active || !s.paused {
		return
	}
	s.pauseTotal += s.now().Sub(s.pausedAt)
	s.paused = false
	s.pausedAt = time.Time{}
}

func (s *Session) Paused() bool {
	return s.paused
}

func (s *Session) IsLevelComplete() bool {
	return s.active && len(s.found) == len(s.placed)
}

func (s *Session) IsTimeUp() bool {
	return s.active && s.RemainingTime() <= 0
}

// Score is 100 points per found word plus two points per remaining second.
func (s *Session) Score() int {
	bonus := int(math.Floor(timeBonusPerSecond * s.RemainingTime()))
	return pointsPerWord*len(s.found) + max(0, bonus)
}

// Hint returns the placement of the first word in list order that has not
// been found yet.
func (s *Session) Hint() (grid.PlacedWord, bool) {
	for _, p := range s.placed {
		if !s.isFound(p.Word) {
			return p, true
		}
	}
	return grid.PlacedWord{}, false
}

func (s *Session) Active() bool {
	return s.active
}

func (s *Session) Level() int {
	return s.config.Number
}

func (s *Session) Seed() int64 {
	return s.seed
}

func (s *Session) Grid() *grid.Grid {
	return s.grid
}

func (s *Session) Placements() []grid.PlacedWord {
	out := make([]grid.PlacedWord, len(s.placed))
	copy(out, s.placed)
	return out
}

// Words returns the words to find in placement order.
func (s *Session) Words() []string {
	out := make([]string, len(s.placed))
	for i, p := range s.placed {
		out[i] = p.Word
	}
	return out
}

// Found returns the found words in the order they were found.
func (s *Session) Found() []string {
	out := make([]string, len(s.found))
	copy(out, s.found)
	return out
}
