package lobby

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bloops-games/wordmix/internal/database/result/model"
	"github.com/bloops-games/wordmix/internal/protocol"
	"github.com/bloops-games/wordmix/internal/words"
)

type fakeSender struct {
	mtx  sync.Mutex
	msgs [][]byte
	full bool
}

func (f *fakeSender) Send(data []byte) bool {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.full {
		return false
	}
	f.msgs = append(f.msgs, data)
	return true
}

// drain returns and forgets every event received so far.
func (f *fakeSender) drain(t *testing.T) []protocol.Event {
	t.Helper()

	f.mtx.Lock()
	defer f.mtx.Unlock()

	out := make([]protocol.Event, 0, len(f.msgs))
	for _, raw := range f.msgs {
		e, err := protocol.Decode(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		out = append(out, e)
	}
	f.msgs = nil
	return out
}

func find[T protocol.Event](events []protocol.Event) (T, bool) {
	for _, e := range events {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func count(events []protocol.Event, typ protocol.Type) int {
	n := 0
	for _, e := range events {
		if e.Type() == typ {
			n++
		}
	}
	return n
}

type fakeResults struct {
	mtx  sync.Mutex
	list []model.Result
	err  error
}

func (f *fakeResults) Add(r model.Result) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.list = append(f.list, r)
	return f.err
}

type fixture struct {
	m       *Manager
	results *fakeResults
	now     time.Time
	conns   map[string]*fakeSender
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()

	pool := words.New(words.English, []string{"CAT", "DOG", "SUN", "MOON", "TREE", "BIRD", "FISH", "LAMP"})
	f := &fixture{
		results: &fakeResults{},
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		conns:   map[string]*fakeSender{},
	}
	f.m = NewManager(pool, &Config{MaxPlayers: 2, SweepInterval: time.Second, IdleRoomTimeout: time.Minute}, f.results)
	f.m.now = func() time.Time { return f.now }

	for _, name := range names {
		f.conns[name] = &fakeSender{}
		f.m.Connect(name, f.conns[name])
	}
	return f
}

func (f *fixture) do(t *testing.T, conn, raw string) {
	t.Helper()
	if err := f.m.Handle(context.Background(), conn, []byte(raw)); err != nil {
		t.Fatalf("handle %s: %v", raw, err)
	}
}

func (f *fixture) expectError(t *testing.T, conn, raw string, code protocol.Code) {
	t.Helper()

	f.conns[conn].drain(t)
	f.do(t, conn, raw)
	events := f.conns[conn].drain(t)
	e, ok := find[*protocol.Error](events)
	if !ok {
		t.Fatalf("%s: expected error %s got %#v", raw, code, events)
	}
	if e.Code != code {
		t.Errorf("%s: expected %#v got %#v", raw, code, e.Code)
	}
}

// startDuel creates a room with seed 42 hosted by connection a, joins b and
// readies both. Player names are the upper-cased connection ids.
func (f *fixture) startDuel(t *testing.T, mode, a, b string) (string, *protocol.GameStart) {
	t.Helper()

	f.do(t, a, fmt.Sprintf(`{"action":"create_room","player_name":%q,"mode":%q,"level":1,"seed":42}`, strings.ToUpper(a), mode))
	created, ok := find[*protocol.RoomCreated](f.conns[a].drain(t))
	if !ok {
		t.Fatal("room_created not received")
	}
	id := created.Room.RoomID

	f.do(t, b, fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":%q}`, id, strings.ToUpper(b)))
	f.do(t, a, `{"action":"player_ready"}`)
	f.do(t, b, `{"action":"player_ready"}`)

	start, ok := find[*protocol.GameStart](f.conns[a].drain(t))
	if !ok {
		t.Fatal("game_start not received")
	}
	if _, ok := find[*protocol.GameStart](f.conns[b].drain(t)); !ok {
		t.Fatal("game_start not received by joiner")
	}
	return id, start
}

func TestCreateJoinList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "watcher")
	f.do(t, "a", `{"action":"create_room","player_name":"Ann","level":2,"seed":7}`)

	created, ok := find[*protocol.RoomCreated](f.conns["a"].drain(t))
	if !ok {
		t.Fatal("room_created not received")
	}
	room := created.Room
	if room.HostName != "Ann" || room.Mode != "duel" || room.Level != 2 || room.Seed != 7 || room.PlayerCount != 1 {
		t.Errorf("unexpected summary %#v", room)
	}
	if len(room.RoomID) != len("ROOM_1234") || room.RoomID[:5] != "ROOM_" {
		t.Errorf("unexpected room id %q", room.RoomID)
	}
	if _, ok := find[*protocol.RoomUpdated](f.conns["watcher"].drain(t)); !ok {
		t.Error("room_updated not broadcast")
	}

	f.do(t, "b", `{"action":"list_rooms"}`)
	list, ok := find[*protocol.RoomList](f.conns["b"].drain(t))
	if !ok || len(list.Rooms) != 1 || list.Rooms[0].RoomID != room.RoomID {
		t.Fatalf("unexpected room list %#v", list)
	}

	f.do(t, "b", fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":"Bob"}`, room.RoomID))
	joined, ok := find[*protocol.JoinedRoom](f.conns["b"].drain(t))
	if !ok || joined.Room.PlayerCount != 2 {
		t.Fatalf("unexpected joined_room %#v", joined)
	}
	pj, ok := find[*protocol.PlayerJoined](f.conns["a"].drain(t))
	if !ok || pj.PlayerName != "Bob" {
		t.Errorf("unexpected player_joined %#v", pj)
	}

	f.do(t, "watcher", `{"action":"list_rooms"}`)
	list, _ = find[*protocol.RoomList](f.conns["watcher"].drain(t))
	if len(list.Rooms) != 0 {
		t.Errorf("full room still listed: %#v", list.Rooms)
	}
}

func TestDuelFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	_, start := f.startDuel(t, "duel", "a", "b")
	if start.Seed != 42 || start.Duration != 180 || len(start.Words) != 5 || start.Grid.Size() != 8 {
		t.Fatalf("unexpected game_start %#v", start)
	}

	w1, w2 := start.Words[0], start.Words[1]
	f.do(t, "a", fmt.Sprintf(`{"action":"check_word","word":%q}`, w1))
	for _, conn := range []string{"a", "b"} {
		found, ok := find[*protocol.WordFound](f.conns[conn].drain(t))
		if !ok {
			t.Fatalf("%s: word_found not received", conn)
		}
		if want := map[string]int{"A": 100, "B": 0}; !reflect.DeepEqual(found.Scores, want) {
			t.Errorf("expected %#v got %#v", want, found.Scores)
		}
	}

	f.do(t, "b", fmt.Sprintf(`{"action":"check_word","word":%q}`, w1))
	invalid, ok := find[*protocol.WordInvalid](f.conns["b"].drain(t))
	if !ok || invalid.Reason != "already_found" || invalid.By != "A" {
		t.Errorf("unexpected word_invalid %#v", invalid)
	}
	if n := len(f.conns["a"].drain(t)); n != 0 {
		t.Errorf("rejection leaked to other player: %d events", n)
	}

	f.do(t, "b", fmt.Sprintf(`{"action":"check_word","word":%q}`, w2))
	for _, w := range start.Words[2:] {
		f.do(t, "a", fmt.Sprintf(`{"action":"check_word","word":%q}`, w))
	}

	for _, conn := range []string{"a", "b"} {
		events := f.conns[conn].drain(t)
		if n := count(events, protocol.TypeGameOver); n != 1 {
			t.Fatalf("%s: expected one game_over got %d", conn, n)
		}
		over, _ := find[*protocol.GameOver](events)
		if over.Winner != "A" {
			t.Errorf("expected %q got %q", "A", over.Winner)
		}
		if want := map[string]int{"A": 400, "B": 100}; !reflect.DeepEqual(over.Scores, want) {
			t.Errorf("expected %#v got %#v", want, over.Scores)
		}
	}

	if len(f.results.list) != 1 {
		t.Fatalf("expected one persisted result got %d", len(f.results.list))
	}
	if res := f.results.list[0]; res.Winner != "A" || res.Seed != 42 || res.TotalWords != 5 || res.FoundWords[w2] != "B" {
		t.Errorf("unexpected result %#v", res)
	}

	f.expectError(t, "a", fmt.Sprintf(`{"action":"check_word","word":%q}`, w1), protocol.CodeGameOver)
}

func TestCoopFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "c", "d")
	_, start := f.startDuel(t, "coop", "c", "d")

	f.do(t, "c", fmt.Sprintf(`{"action":"check_word","word":%q}`, start.Words[0]))
	found, _ := find[*protocol.WordFound](f.conns["d"].drain(t))
	if want := map[string]int{"C": 50, "D": 50}; !reflect.DeepEqual(found.Scores, want) {
		t.Errorf("expected %#v got %#v", want, found.Scores)
	}

	f.do(t, "d", fmt.Sprintf(`{"action":"check_word","word":%q}`, start.Words[0]))
	invalid, ok := find[*protocol.WordInvalid](f.conns["d"].drain(t))
	if !ok || invalid.Reason != "already_found" || invalid.By != "" {
		t.Errorf("unexpected word_invalid %#v", invalid)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "c")
	f.expectError(t, "a", `{"action":`, protocol.CodeMalformed)
	f.expectError(t, "a", `{"action":"fly"}`, protocol.CodeUnknownAction)
	f.expectError(t, "a", `{"action":"create_room","player_name":"Ann","level":0}`, protocol.CodeInvalidLevel)
	f.expectError(t, "a", `{"action":"create_room","player_name":"Ann","mode":"battle"}`, protocol.CodeInvalidMode)
	f.expectError(t, "a", `{"action":"join_room","room_id":"ROOM_0000","player_name":"Ann"}`, protocol.CodeRoomNotFound)
	f.expectError(t, "a", `{"action":"check_word","word":"CAT"}`, protocol.CodeNotInRoom)
	f.expectError(t, "a", `{"action":"player_ready"}`, protocol.CodeNotInRoom)
	f.expectError(t, "a", `{"action":"leave_room"}`, protocol.CodeNotInRoom)

	f.do(t, "a", `{"action":"create_room","player_name":"Ann","seed":1}`)
	created, _ := find[*protocol.RoomCreated](f.conns["a"].drain(t))
	id := created.Room.RoomID

	f.expectError(t, "a", `{"action":"create_room","player_name":"Ann"}`, protocol.CodeAlreadyInRoom)
	f.expectError(t, "b", fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":"Ann"}`, id), protocol.CodeNameTaken)
	f.expectError(t, "a", `{"action":"check_word","word":"CAT"}`, protocol.CodeNotStarted)

	f.do(t, "b", fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":"Bob"}`, id))
	f.expectError(t, "c", fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":"Cid"}`, id), protocol.CodeRoomFull)

	f.do(t, "a", `{"action":"player_ready"}`)
	f.do(t, "b", `{"action":"player_ready"}`)
	f.do(t, "b", `{"action":"leave_room"}`)
	f.expectError(t, "c", fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":"Cid"}`, id), protocol.CodeRoomAlreadyStarted)

	if err := f.m.Handle(context.Background(), "ghost", []byte(`{"action":"list_rooms"}`)); !errors.Is(err, ErrUnknownClient) {
		t.Errorf("expected %v got %v", ErrUnknownClient, err)
	}
}

func TestGenerationFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	f.m.pool = words.New(words.English, nil)

	f.do(t, "a", `{"action":"create_room","player_name":"Ann"}`)
	created, _ := find[*protocol.RoomCreated](f.conns["a"].drain(t))
	f.do(t, "b", fmt.Sprintf(`{"action":"join_room","room_id":%q,"player_name":"Bob"}`, created.Room.RoomID))
	f.do(t, "a", `{"action":"player_ready"}`)
	f.expectError(t, "b", `{"action":"player_ready"}`, protocol.CodeGenerationFailure)

	if _, err := f.m.Room(created.Room.RoomID); err != nil {
		t.Fatalf("room: %v", err)
	}
	if summary, _ := f.m.Room(created.Room.RoomID); summary.GameStarted {
		t.Error("room started without a grid")
	}
}

func TestDisconnect(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	id, _ := f.startDuel(t, "duel", "a", "b")

	f.m.Disconnect(context.Background(), "b")
	left, ok := find[*protocol.PlayerLeft](f.conns["a"].drain(t))
	if !ok || left.PlayerName != "B" {
		t.Errorf("unexpected player_left %#v", left)
	}
	if _, err := f.m.Room(id); err != nil {
		t.Fatalf("room destroyed while a player remains: %v", err)
	}

	f.m.Disconnect(context.Background(), "a")
	if _, err := f.m.Room(id); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected %v got %v", ErrRoomNotFound, err)
	}
	if len(f.m.clients) != 0 || len(f.m.members) != 0 {
		t.Errorf("leftover state: %d clients %d members", len(f.m.clients), len(f.m.members))
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b", "c")
	started, start := f.startDuel(t, "duel", "a", "b")

	f.do(t, "c", `{"action":"create_room","player_name":"Cid"}`)
	created, _ := find[*protocol.RoomCreated](f.conns["c"].drain(t))
	idle := created.Room.RoomID

	f.now = f.now.Add(30 * time.Second)
	f.m.sweep(context.Background(), f.now)
	if _, err := f.m.Room(idle); err != nil {
		t.Fatalf("room closed too early: %v", err)
	}

	f.now = f.now.Add(3 * time.Minute)
	f.m.sweep(context.Background(), f.now)

	if _, err := f.m.Room(idle); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected %v got %v", ErrRoomNotFound, err)
	}
	notice, ok := find[*protocol.Error](f.conns["c"].drain(t))
	if !ok || notice.Code != protocol.CodeRoomNotFound {
		t.Errorf("unexpected notice %#v", notice)
	}

	over, ok := find[*protocol.GameOver](f.conns["a"].drain(t))
	if !ok || over.Winner != "A" {
		t.Errorf("unexpected game_over %#v", over)
	}
	if len(f.results.list) != 1 {
		t.Errorf("expected one persisted result got %d", len(f.results.list))
	}

	f.expectError(t, "b", fmt.Sprintf(`{"action":"check_word","word":%q}`, start.Words[0]), protocol.CodeGameOver)
	if _, err := f.m.Room(started); err != nil {
		t.Errorf("finished room with players removed early: %v", err)
	}
}

func TestExpiredCheckWord(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	_, start := f.startDuel(t, "duel", "a", "b")

	f.now = f.now.Add(181 * time.Second)
	f.do(t, "a", fmt.Sprintf(`{"action":"check_word","word":%q}`, start.Words[0]))

	for _, conn := range []string{"a", "b"} {
		events := f.conns[conn].drain(t)
		if count(events, protocol.TypeWordFound) != 0 {
			t.Errorf("%s: late word credited", conn)
		}
		over, ok := find[*protocol.GameOver](events)
		if !ok {
			t.Fatalf("%s: game_over not received", conn)
		}
		if want := map[string]int{"A": 0, "B": 0}; !reflect.DeepEqual(over.Scores, want) {
			t.Errorf("expected %#v got %#v", want, over.Scores)
		}
	}
}

func TestFullOutboxIsolated(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a", "b")
	_, start := f.startDuel(t, "duel", "a", "b")

	f.conns["b"].full = true
	f.do(t, "a", fmt.Sprintf(`{"action":"check_word","word":%q}`, start.Words[0]))

	if _, ok := find[*protocol.WordFound](f.conns["a"].drain(t)); !ok {
		t.Error("word_found not delivered to a healthy outbox")
	}
	if n := len(f.conns["b"].drain(t)); n != 0 {
		t.Errorf("expected no events for a full outbox got %d", n)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.m.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}

func TestCodeFor(t *testing.T) {
	t.Parallel()

	if got := codeFor(errors.New("boom")); got != protocol.CodeInternal {
		t.Errorf("expected %#v got %#v", protocol.CodeInternal, got)
	}
	if got := codeFor(fmt.Errorf("wrapped: %w", ErrAlreadyInRoom)); got != protocol.CodeAlreadyInRoom {
		t.Errorf("expected %#v got %#v", protocol.CodeAlreadyInRoom, got)
	}
}
