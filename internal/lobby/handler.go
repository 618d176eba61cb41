package lobby

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloops-games/wordmix/internal/grid"
	"github.com/bloops-games/wordmix/internal/level"
	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/protocol"
	"github.com/bloops-games/wordmix/internal/room"
)

// Handle processes one client frame. Failures are answered with an error
// event to connID only; the returned error is reserved for unknown clients.
func (m *Manager) Handle(ctx context.Context, connID string, data []byte) error {
	logger := logging.FromContext(ctx).Named("lobby.Handle")

	m.mtx.RLock()
	_, ok := m.clients[connID]
	m.mtx.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownClient, connID)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("recovered handling message from %s: %v", connID, r)
			m.replyError(ctx, connID, errPanicRecovered)
		}
	}()

	req, err := protocol.ParseRequest(data)
	if err != nil {
		logger.Debugf("bad request from %s: %v", connID, err)
		m.replyError(ctx, connID, err)
		return nil
	}

	if err := m.dispatch(ctx, connID, req); err != nil {
		logger.Debugf("%s from %s: %v", req.Action, connID, err)
		m.replyError(ctx, connID, err)
	}

	return nil
}

func (m *Manager) dispatch(ctx context.Context, connID string, req protocol.Request) error {
	switch req.Action {
	case protocol.ActionListRooms:
		m.send(ctx, connID, protocol.RoomList{Rooms: m.Rooms()})
		return nil
	case protocol.ActionCreateRoom:
		return m.createRoom(ctx, connID, req)
	case protocol.ActionJoinRoom:
		return m.joinRoom(ctx, connID, req)
	case protocol.ActionPlayerReady:
		return m.playerReady(ctx, connID)
	case protocol.ActionCheckWord:
		return m.checkWord(ctx, connID, req.Word)
	case protocol.ActionLeaveRoom:
		return m.leave(ctx, connID)
	}

	return fmt.Errorf("%w: %q", protocol.ErrUnknownAction, req.Action)
}

func (m *Manager) replyError(ctx context.Context, connID string, err error) {
	m.send(ctx, connID, protocol.Error{Code: codeFor(err), Message: err.Error()})
}

func codeFor(err error) protocol.Code {
	switch {
	case errors.Is(err, protocol.ErrMalformed):
		return protocol.CodeMalformed
	case errors.Is(err, protocol.ErrUnknownAction):
		return protocol.CodeUnknownAction
	case errors.Is(err, level.ErrInvalidLevel):
		return protocol.CodeInvalidLevel
	case errors.Is(err, room.ErrInvalidMode):
		return protocol.CodeInvalidMode
	case errors.Is(err, ErrRoomNotFound):
		return protocol.CodeRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		return protocol.CodeRoomFull
	case errors.Is(err, room.ErrRoomAlreadyStarted):
		return protocol.CodeRoomAlreadyStarted
	case errors.Is(err, room.ErrNameTaken):
		return protocol.CodeNameTaken
	case errors.Is(err, room.ErrNotInRoom):
		return protocol.CodeNotInRoom
	case errors.Is(err, ErrAlreadyInRoom):
		return protocol.CodeAlreadyInRoom
	case errors.Is(err, room.ErrNotStarted):
		return protocol.CodeNotStarted
	case errors.Is(err, room.ErrGameOver):
		return protocol.CodeGameOver
	case errors.Is(err, grid.ErrGenerationFailure):
		return protocol.CodeGenerationFailure
	}
	return protocol.CodeInternal
}

// roomOf returns the entry connID is a member of.
func (m *Manager) roomOf(connID string) (*entry, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	id, ok := m.members[connID]
	if !ok {
		return nil, room.ErrNotInRoom
	}
	e, ok := m.rooms[id]
	if !ok {
		return nil, room.ErrNotInRoom
	}
	return e, nil
}

func (m *Manager) inRoom(connID string) bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	_, ok := m.members[connID]
	return ok
}

func (m *Manager) createRoom(ctx context.Context, connID string, req protocol.Request) error {
	logger := logging.FromContext(ctx).Named("lobby.createRoom")

	if m.inRoom(connID) {
		return ErrAlreadyInRoom
	}

	seed := randomSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	id, err := m.newRoomID()
	if err != nil {
		return err
	}

	r, err := room.New(room.Config{
		ID:         id,
		HostName:   req.PlayerName,
		Mode:       room.Mode(req.ModeOrDefault()),
		Level:      req.LevelOrDefault(),
		Seed:       seed,
		MaxPlayers: m.config.MaxPlayers,
		Pool:       m.pool,
	}, m.now())
	if err != nil {
		return fmt.Errorf("new room: %w", err)
	}
	if err := r.Join(connID, req.PlayerName); err != nil {
		return fmt.Errorf("host join: %w", err)
	}

	e := &entry{room: r}
	e.mtx.Lock()
	defer e.mtx.Unlock()

	m.mtx.Lock()
	if _, taken := m.rooms[id]; taken {
		m.mtx.Unlock()
		return fmt.Errorf("%w: %s", ErrNoRoomID, id)
	}
	m.rooms[id] = e
	m.members[connID] = id
	m.mtx.Unlock()

	logger.Infof("room %s created by %s (%s, level %d, seed %d)", id, req.PlayerName, r.Mode(), req.LevelOrDefault(), seed)

	summary := r.Summary()
	m.send(ctx, connID, protocol.RoomCreated{Room: summary})
	m.broadcastAll(ctx, protocol.RoomUpdated{Room: summary})

	return nil
}

func (m *Manager) joinRoom(ctx context.Context, connID string, req protocol.Request) error {
	if m.inRoom(connID) {
		return ErrAlreadyInRoom
	}

	m.mtx.RLock()
	e, ok := m.rooms[req.RoomID]
	m.mtx.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.closed {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}

	others := e.room.Members()
	if err := e.room.Join(connID, req.PlayerName); err != nil {
		return fmt.Errorf("join %s: %w", req.RoomID, err)
	}

	m.mtx.Lock()
	m.members[connID] = req.RoomID
	m.mtx.Unlock()

	summary := e.room.Summary()
	m.send(ctx, connID, protocol.JoinedRoom{Room: summary})
	m.sendMany(ctx, others, protocol.PlayerJoined{PlayerName: req.PlayerName, Room: summary})
	m.broadcastAll(ctx, protocol.RoomUpdated{Room: summary})

	return nil
}

func (m *Manager) playerReady(ctx context.Context, connID string) error {
	logger := logging.FromContext(ctx).Named("lobby.playerReady")

	e, err := m.roomOf(connID)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	name, ok := e.room.PlayerName(connID)
	if !ok {
		return room.ErrNotInRoom
	}
	started, err := e.room.Ready(connID, m.now())
	if err != nil {
		return err
	}

	members := e.room.Members()
	m.sendMany(ctx, members, protocol.PlayerReady{PlayerName: name})
	if !started {
		return nil
	}

	start := e.room.Start()
	logger.Infof("room %s started with %d words", e.room.ID(), len(start.Words))
	m.sendMany(ctx, members, protocol.GameStart{
		Grid:     start.Grid,
		Words:    start.Words,
		Duration: start.Duration,
		Seed:     start.Seed,
	})
	m.broadcastAll(ctx, protocol.RoomUpdated{Room: e.room.Summary()})

	return nil
}

func (m *Manager) checkWord(ctx context.Context, connID, word string) error {
	e, err := m.roomOf(connID)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	found, expired, err := e.room.CheckWord(connID, word, m.now())
	var rejected *room.RejectedError
	switch {
	case errors.As(err, &rejected):
		m.send(ctx, connID, protocol.WordInvalid{Reason: rejected.Reason, Word: rejected.Word, By: rejected.By})
		return nil
	case err != nil:
		return err
	case expired:
		m.finish(ctx, e.room)
		return nil
	}

	m.sendMany(ctx, e.room.Members(), protocol.WordFound{
		Word:       found.Word,
		Finder:     found.Finder,
		Scores:     found.Scores,
		FoundCount: found.FoundCount,
		TotalWords: found.TotalWords,
	})
	if found.Over {
		m.finish(ctx, e.room)
	}

	return nil
}

// leave removes connID from its room. The room is destroyed once empty.
func (m *Manager) leave(ctx context.Context, connID string) error {
	logger := logging.FromContext(ctx).Named("lobby.leave")

	e, err := m.roomOf(connID)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	name, err := e.room.Leave(connID)
	if err != nil {
		return err
	}

	m.mtx.Lock()
	delete(m.members, connID)
	m.mtx.Unlock()

	if e.room.Empty() {
		logger.Infof("room %s is empty, destroying", e.room.ID())
		m.remove(e, nil)
		m.broadcastAll(ctx, protocol.RoomList{Rooms: m.Rooms()})
		return nil
	}

	m.sendMany(ctx, e.room.Members(), protocol.PlayerLeft{PlayerName: name})
	m.broadcastAll(ctx, protocol.RoomUpdated{Room: e.room.Summary()})

	return nil
}
