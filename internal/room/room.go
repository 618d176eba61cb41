// Package room holds the authoritative state of one multiplayer match.
//
// A room moves through open, full, started and over. Players are identified
// by a stable connection id and kept in join order; scores are keyed by
// player name. All methods are safe for concurrent use.
package room

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bloops-games/wordmix/internal/grid"
	"github.com/bloops-games/wordmix/internal/level"
	"github.com/bloops-games/wordmix/internal/rng"
	"github.com/bloops-games/wordmix/internal/words"
)

const (
	DefaultMaxPlayers = 2
	minPlayers        = 2

	duelPoints = 100
	coopPoints = 50

	TeamWinner = "Team"
)

type Mode string

const (
	Duel Mode = "duel"
	Coop Mode = "coop"
)

func (m Mode) Valid() bool {
	return m == Duel || m == Coop
}

type stateKind uint8

const (
	stateKindOpen stateKind = iota + 1
	stateKindFull
	stateKindStarted
	stateKindOver
)

var (
	ErrInvalidMode        = fmt.Errorf("invalid mode")
	ErrRoomFull           = fmt.Errorf("room is full")
	ErrRoomAlreadyStarted = fmt.Errorf("room already started")
	ErrNameTaken          = fmt.Errorf("player name taken")
	ErrNotInRoom          = fmt.Errorf("not in room")
	ErrNotStarted         = fmt.Errorf("game not started")
	ErrGameOver           = fmt.Errorf("game over")
)

type Reason string

const (
	ReasonNotInList    Reason = "not_in_list"
	ReasonAlreadyFound Reason = "already_found"
)

// RejectedError is returned by CheckWord when a word earns no points.
// By names the player who found the word first in duel mode.
type RejectedError struct {
	Reason Reason
	Word   string
	By     string
}

func (e *RejectedError) Error() string {
	if e.By != "" {
		return fmt.Sprintf("word %s rejected: %s by %s", e.Word, e.Reason, e.By)
	}
	return fmt.Sprintf("word %s rejected: %s", e.Word, e.Reason)
}

type Config struct {
	ID         string
	HostName   string
	Mode       Mode
	Level      int
	Seed       int64
	MaxPlayers int
	Pool       *words.Pool
}

type Player struct {
	ConnID string
	Name   string
	Ready  bool
}

// New validates config and creates an empty room. The host joins like any
// other player.
func New(config Config, now time.Time) (*Room, error) {
	if !config.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, config.Mode)
	}
	levelConfig, err := level.Resolve(config.Level)
	if err != nil {
		return nil, fmt.Errorf("resolve level: %w", err)
	}
	if config.MaxPlayers < minPlayers {
		config.MaxPlayers = DefaultMaxPlayers
	}

	return &Room{
		config:    config,
		level:     levelConfig,
		state:     stateKindOpen,
		scores:    map[string]int{},
		found:     map[string]string{},
		CreatedAt: now,
	}, nil
}

type Room struct {
	mtx sync.RWMutex

	config  Config
	level   level.Config
	state   stateKind
	players []*Player
	scores  map[string]int

	grid   *grid.Grid
	placed []grid.PlacedWord
	// word -> finder name, empty in coop
	found     map[string]string
	foundList []string

	CreatedAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
}

func (r *Room) ID() string {
	return r.config.ID
}

func (r *Room) Mode() Mode {
	return r.config.Mode
}

func (r *Room) Join(connID, name string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.state == stateKindStarted || r.state == stateKindOver {
		return ErrRoomAlreadyStarted
	}
	for _, p := range r.players {
		if p.Name == name {
			return fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
	}
	if len(r.players) >= r.config.MaxPlayers {
		return ErrRoomFull
	}

	r.players = append(r.players, &Player{ConnID: connID, Name: name})
	r.scores[name] = 0
	if len(r.players) >= r.config.MaxPlayers {
		r.state = stateKindFull
	}

	return nil
}

// Ready marks the player ready. Once at least two players are in and all of
// them are ready the grid is generated and the game starts; started reports
// that transition. A generation error leaves the room unstarted.
func (r *Room) Ready(connID string, now time.Time) (started bool, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	p := r.player(connID)
	if p == nil {
		return false, ErrNotInRoom
	}
	if r.state == stateKindStarted || r.state == stateKindOver {
		return false, ErrRoomAlreadyStarted
	}

	p.Ready = true
	if len(r.players) < minPlayers {
		return false, nil
	}
	for _, other := range r.players {
		if !other.Ready {
			return false, nil
		}
	}

	g, placed, err := grid.NewGenerator(rng.New(r.config.Seed)).Generate(grid.Config{
		Size:          r.level.GridSize,
		NumWords:      r.level.WordCount,
		AllowDiagonal: r.level.AllowDiagonal,
		AllowReverse:  r.level.AllowReverse,
	}, r.config.Pool.Words())
	if err != nil {
		return false, fmt.Errorf("generate room %s grid: %w", r.config.ID, err)
	}

	r.grid = g
	r.placed = placed
	r.state = stateKindStarted
	r.startedAt = now

	return true, nil
}

// Found is a successful CheckWord.
type Found struct {
	Word       string
	Finder     string
	Scores     map[string]int
	FoundCount int
	TotalWords int
	// Over is set when this find completed the grid.
	Over bool
}

// CheckWord credits word to the calling player. A word that is not in the
// grid or already found yields a *RejectedError. When the match duration has
// elapsed the room is finished instead and expired is true.
func (r *Room) CheckWord(connID, word string, now time.Time) (result Found, expired bool, err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	p := r.player(connID)
	if p == nil {
		return Found{}, false, ErrNotInRoom
	}
	switch r.state {
	case stateKindOver:
		return Found{}, false, ErrGameOver
	case stateKindStarted:
	default:
		return Found{}, false, ErrNotStarted
	}

	if r.expired(now) {
		r.finish(now)
		return Found{}, true, nil
	}

	w := words.Normalize(word)
	if !r.isTarget(w) {
		return Found{}, false, &RejectedError{Reason: ReasonNotInList, Word: w}
	}
	if by, ok := r.found[w]; ok {
		return Found{}, false, &RejectedError{Reason: ReasonAlreadyFound, Word: w, By: by}
	}

	switch r.config.Mode {
	case Duel:
		r.found[w] = p.Name
		r.scores[p.Name] += duelPoints
	case Coop:
		r.found[w] = ""
		for _, other := range r.players {
			r.scores[other.Name] += coopPoints
		}
	}
	r.foundList = append(r.foundList, w)

	result = Found{
		Word:       w,
		Finder:     p.Name,
		Scores:     r.scoresCopy(),
		FoundCount: len(r.found),
		TotalWords: len(r.placed),
	}
	if len(r.found) == len(r.placed) {
		r.finish(now)
		result.Over = true
	}

	return result, false, nil
}

func (r *Room) isTarget(w string) bool {
	for _, p := range r.placed {
		if p.Word == w {
			return true
		}
	}
	return false
}

func (r *Room) expired(now time.Time) bool {
	return now.Sub(r.startedAt) >= r.level.TimeLimit()
}

func (r *Room) finish(now time.Time) {
	r.state = stateKindOver
	r.finishedAt = now
}

// Expire finishes a started room whose timer has run out and reports whether
// it did so.
func (r *Room) Expire(now time.Time) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.state != stateKindStarted || !r.expired(now) {
		return false
	}
	r.finish(now)
	return true
}

// Leave removes the player and its score. A running match goes on.
func (r *Room) Leave(connID string) (string, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for i, p := range r.players {
		if p.ConnID != connID {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		delete(r.scores, p.Name)
		if r.state == stateKindFull {
			r.state = stateKindOpen
		}
		return p.Name, nil
	}

	return "", ErrNotInRoom
}

func (r *Room) Empty() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.players) == 0
}

func (r *Room) Started() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.state == stateKindStarted
}

func (r *Room) Over() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.state == stateKindOver
}

// Joinable reports whether the room is neither full nor started.
func (r *Room) Joinable() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.state == stateKindOpen
}

func (r *Room) PlayerName(connID string) (string, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	if p := r.player(connID); p != nil {
		return p.Name, true
	}
	return "", false
}

// Members returns the connection ids of the players in join order.
func (r *Room) Members() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]string, len(r.players))
	for i, p := range r.players {
		out[i] = p.ConnID
	}
	return out
}

func (r *Room) player(connID string) *Player {
	for _, p := range r.players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) scoresCopy() map[string]int {
	out := make(map[string]int, len(r.scores))
	for k, v := range r.scores {
		out[k] = v
	}
	return out
}

func (r *Room) Scores() map[string]int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.scoresCopy()
}

// Winner is "Team" in coop. In duel it is the player with the highest score,
// ties going to whoever joined first.
func (r *Room) Winner() string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.winner()
}

func (r *Room) winner() string {
	if r.config.Mode == Coop {
		return TeamWinner
	}

	best, bestScore := "", -1
	for _, p := range r.players {
		if s := r.scores[p.Name]; s > bestScore {
			best, bestScore = p.Name, s
		}
	}
	return best
}

// Standing is a player score, used to rank a finished room.
type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Standings returns the players ordered by score, join order breaking ties.
func (r *Room) Standings() []Standing {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]Standing, len(r.players))
	for i, p := range r.players {
		out[i] = Standing{Name: p.Name, Score: r.scores[p.Name]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Start is what every player receives when the match begins.
type Start struct {
	Grid     *grid.Grid
	Words    []string
	Duration int
	Seed     int64
}

func (r *Room) Start() Start {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	list := make([]string, len(r.placed))
	for i, p := range r.placed {
		list[i] = p.Word
	}
	return Start{Grid: r.grid, Words: list, Duration: r.level.TimeLimitSeconds, Seed: r.config.Seed}
}

// Outcome describes a finished room.
type Outcome struct {
	RoomID     string
	Mode       Mode
	Level      int
	Seed       int64
	Winner     string
	Scores     map[string]int
	FoundWords map[string]string
	FoundOrder []string
	TotalWords int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Room) Outcome() Outcome {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	found := make(map[string]string, len(r.found))
	for k, v := range r.found {
		found[k] = v
	}
	return Outcome{
		RoomID:     r.config.ID,
		Mode:       r.config.Mode,
		Level:      r.config.Level,
		Seed:       r.config.Seed,
		Winner:     r.winner(),
		Scores:     r.scoresCopy(),
		FoundWords: found,
		FoundOrder: append([]string(nil), r.foundList...),
		TotalWords: len(r.placed),
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
	}
}

// Summary is the public description of a room used in listings.
type Summary struct {
	RoomID      string   `json:"room_id"`
	HostName    string   `json:"host_name"`
	Mode        Mode     `json:"mode"`
	Level       int      `json:"level"`
	Seed        int64    `json:"seed"`
	PlayerCount int      `json:"player_count"`
	MaxPlayers  int      `json:"max_players"`
	GameStarted bool     `json:"game_started"`
	Players     []string `json:"players"`
}

func (r *Room) Summary() Summary {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	players := make([]string, len(r.players))
	for i, p := range r.players {
		players[i] = p.Name
	}
	return Summary{
		RoomID:      r.config.ID,
		HostName:    r.config.HostName,
		Mode:        r.config.Mode,
		Level:       r.config.Level,
		Seed:        r.config.Seed,
		PlayerCount: len(r.players),
		MaxPlayers:  r.config.MaxPlayers,
		GameStarted: r.state == stateKindStarted || r.state == stateKindOver,
		Players:     players,
	}
}
