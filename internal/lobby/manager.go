// Package lobby is the multiplayer session server: it tracks connected
// clients and rooms, routes client requests and fans events out.
//
// Messages for one room are handled one at a time under that room's lock,
// including the enqueue of the resulting broadcasts, so every member sees
// the same event order. Rooms are independent of each other.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bloops-games/wordmix/internal/database/result/model"
	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/protocol"
	"github.com/bloops-games/wordmix/internal/room"
	"github.com/bloops-games/wordmix/internal/words"
	"github.com/valyala/fastrand"
)

const (
	roomIDMin         = 1000
	roomIDSpan        = 9000
	roomIDAttempts    = 64
	seedMin           = 1000
	seedMax           = 9999999
	idleRoomClosedMsg = "room closed after inactivity"
)

var (
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrAlreadyInRoom  = fmt.Errorf("already in a room")
	ErrNoRoomID       = fmt.Errorf("no free room id")
	ErrUnknownClient  = fmt.Errorf("unknown client")
	errPanicRecovered = fmt.Errorf("panic while handling message")
)

// Sender delivers encoded events to one connection. Send must not block; it
// reports false when the message was dropped.
type Sender interface {
	Send(data []byte) bool
}

// ResultStore persists finished matches.
type ResultStore interface {
	Add(r model.Result) error
}

func NewManager(pool *words.Pool, config *Config, results ResultStore) *Manager {
	return &Manager{
		pool:    pool,
		config:  config,
		results: results,
		now:     time.Now,
		clients: map[string]Sender{},
		rooms:   map[string]*entry{},
		members: map[string]string{},
	}
}

type Manager struct {
	mtx sync.RWMutex

	pool    *words.Pool
	config  *Config
	results ResultStore
	now     func() time.Time

	// key: connection id
	clients map[string]Sender
	// key: room id
	rooms map[string]*entry
	// connection id -> room id
	members map[string]string
}

type entry struct {
	mtx sync.Mutex

	room   *room.Room
	closed bool
}

func (m *Manager) Connect(connID string, s Sender) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.clients[connID] = s
}

// Disconnect removes the client, leaving its room first.
func (m *Manager) Disconnect(ctx context.Context, connID string) {
	logger := logging.FromContext(ctx).Named("lobby.Disconnect")
	if err := m.leave(ctx, connID); err != nil && !errors.Is(err, room.ErrNotInRoom) {
		logger.Warnf("leave on disconnect %s: %v", connID, err)
	}

	m.mtx.Lock()
	delete(m.clients, connID)
	m.mtx.Unlock()
}

// Run sweeps rooms until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	timer := time.NewTicker(m.config.SweepInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			m.sweep(ctx, m.now())
		}
	}
}

// sweep finishes started rooms whose timer ran out and closes rooms idle
// for longer than the configured timeout.
func (m *Manager) sweep(ctx context.Context, now time.Time) {
	logger := logging.FromContext(ctx).Named("lobby.sweep")

	m.mtx.RLock()
	entries := make([]*entry, 0, len(m.rooms))
	for _, e := range m.rooms {
		entries = append(entries, e)
	}
	m.mtx.RUnlock()

	for _, e := range entries {
		e.mtx.Lock()
		if e.closed {
			e.mtx.Unlock()
			continue
		}

		if e.room.Expire(now) {
			logger.Infof("room %s timed out", e.room.ID())
			m.finish(ctx, e.room)
		} else if m.idle(e.room, now) {
			logger.Infof("closing idle room %s", e.room.ID())
			members := e.room.Members()
			m.sendMany(ctx, members, protocol.Error{Code: protocol.CodeRoomNotFound, Message: idleRoomClosedMsg})
			m.remove(e, members)
			m.broadcastAll(ctx, protocol.RoomList{Rooms: m.Rooms()})
		}
		e.mtx.Unlock()
	}
}

func (m *Manager) idle(r *room.Room, now time.Time) bool {
	if r.Started() {
		return false
	}
	since := r.CreatedAt
	if r.Over() {
		since = r.Outcome().FinishedAt
	}
	return now.Sub(since) > m.config.IdleRoomTimeout
}

// remove drops the room and its members. Callers hold e.mtx.
func (m *Manager) remove(e *entry, members []string) {
	e.closed = true

	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.rooms, e.room.ID())
	for _, connID := range members {
		delete(m.members, connID)
	}
}

// Rooms returns the joinable rooms ordered by id.
func (m *Manager) Rooms() []room.Summary {
	m.mtx.RLock()
	list := make([]*room.Room, 0, len(m.rooms))
	for _, e := range m.rooms {
		list = append(list, e.room)
	}
	m.mtx.RUnlock()

	out := make([]room.Summary, 0, len(list))
	for _, r := range list {
		if r.Joinable() {
			out = append(out, r.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RoomID < out[j].RoomID
	})
	return out
}

// Room returns the summary of any room, joinable or not.
func (m *Manager) Room(id string) (room.Summary, error) {
	m.mtx.RLock()
	e, ok := m.rooms[id]
	m.mtx.RUnlock()
	if !ok {
		return room.Summary{}, ErrRoomNotFound
	}
	return e.room.Summary(), nil
}

func (m *Manager) newRoomID() (string, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	for i := 0; i < roomIDAttempts; i++ {
		id := fmt.Sprintf("ROOM_%04d", roomIDMin+fastrand.Uint32n(roomIDSpan))
		if _, ok := m.rooms[id]; !ok {
			return id, nil
		}
	}
	return "", ErrNoRoomID
}

func randomSeed() int64 {
	return int64(seedMin + fastrand.Uint32n(seedMax-seedMin+1))
}

func (m *Manager) finish(ctx context.Context, r *room.Room) {
	logger := logging.FromContext(ctx).Named("lobby.finish")

	outcome := r.Outcome()
	m.sendMany(ctx, r.Members(), protocol.GameOver{
		Winner:     outcome.Winner,
		Scores:     outcome.Scores,
		FoundWords: outcome.FoundWords,
	})

	if m.results == nil {
		return
	}

	res := model.NewResult()
	res.RoomID = outcome.RoomID
	res.Mode = string(outcome.Mode)
	res.Level = outcome.Level
	res.Seed = outcome.Seed
	res.Winner = outcome.Winner
	res.Scores = outcome.Scores
	res.FoundWords = outcome.FoundWords
	res.TotalWords = outcome.TotalWords
	res.StartedAt = outcome.StartedAt
	res.FinishedAt = outcome.FinishedAt
	if err := m.results.Add(res); err != nil {
		logger.Errorf("persist result of %s: %v", outcome.RoomID, err)
	}
}

func (m *Manager) send(ctx context.Context, connID string, e protocol.Event) {
	data, err := protocol.Encode(e)
	if err != nil {
		logging.FromContext(ctx).Named("lobby.send").Errorf("encode %s: %v", e.Type(), err)
		return
	}
	m.deliver(ctx, []string{connID}, data)
}

func (m *Manager) sendMany(ctx context.Context, connIDs []string, e protocol.Event) {
	data, err := protocol.Encode(e)
	if err != nil {
		logging.FromContext(ctx).Named("lobby.sendMany").Errorf("encode %s: %v", e.Type(), err)
		return
	}
	m.deliver(ctx, connIDs, data)
}

func (m *Manager) broadcastAll(ctx context.Context, e protocol.Event) {
	m.mtx.RLock()
	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	m.mtx.RUnlock()

	m.sendMany(ctx, ids, e)
}

func (m *Manager) deliver(ctx context.Context, connIDs []string, data []byte) {
	logger := logging.FromContext(ctx).Named("lobby.deliver")

	m.mtx.RLock()
	defer m.mtx.RUnlock()
	for _, id := range connIDs {
		s, ok := m.clients[id]
		if !ok {
			continue
		}
		if !s.Send(data) {
			logger.Warnf("outbox of %s is full, message dropped", id)
		}
	}
}
