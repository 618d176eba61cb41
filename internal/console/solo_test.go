package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/bloops-games/wordmix/internal/database/save/model"
	"github.com/bloops-games/wordmix/internal/level"
	"github.com/bloops-games/wordmix/internal/solo"
	"github.com/bloops-games/wordmix/internal/words"
)

var testWords = []string{"CAT", "DOG", "SUN", "MOON", "TREE", "BIRD", "FISH", "LAMP"}

func testPool() *words.Pool {
	return words.New(words.English, testWords)
}

type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

type memSaves struct {
	slots map[string]model.Slot
}

func (m *memSaves) Put(slot model.Slot) error {
	m.slots[slot.Name] = slot
	return nil
}

func (m *memSaves) Fetch(name string) (model.Slot, error) {
	slot, ok := m.slots[name]
	if !ok {
		return model.Slot{}, fmt.Errorf("slot %s not found", name)
	}
	return slot, nil
}

func (m *memSaves) List() ([]model.Slot, error) {
	out := make([]model.Slot, 0, len(m.slots))
	for _, slot := range m.slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// levelWords returns the words level 1 hides for seed.
func levelWords(t *testing.T, seed int64) []string {
	t.Helper()

	probe := solo.New(testPool(), newClock().now)
	info, err := probe.StartLevel(1, &seed)
	if err != nil {
		t.Fatalf("start probe: %v", err)
	}
	return info.Words
}

func lines(l ...string) *strings.Reader {
	return strings.NewReader(strings.Join(l, "\n") + "\n")
}

func TestSoloCompletesLevel(t *testing.T) {
	t.Parallel()

	seed := int64(42)
	list := levelWords(t, seed)

	input := []string{"zzz"}
	for _, w := range list {
		input = append(input, strings.ToLower(w))
	}
	input = append(input, "/quit")

	clock := newClock()
	session := solo.New(testPool(), clock.now)
	var out bytes.Buffer
	if err := NewSolo(session, nil, &out, clock.now).Run(context.Background(), SoloConfig{Level: 1, Seed: &seed}, lines(input...)); err != nil {
		t.Fatalf("run: %v", err)
	}

	if session.Level() != 2 {
		t.Errorf("expected %#v got %#v", 2, session.Level())
	}
	if !strings.Contains(out.String(), "Level 1 complete!") {
		t.Errorf("missing completion message in %q", out.String())
	}
	if !strings.Contains(out.String(), "Final score") {
		t.Errorf("missing final score in %q", out.String())
	}
}

func TestSoloSaveLoad(t *testing.T) {
	t.Parallel()

	seed := int64(42)
	list := levelWords(t, seed)

	clock := newClock()
	session := solo.New(testPool(), clock.now)
	saves := &memSaves{slots: map[string]model.Slot{}}
	var out bytes.Buffer

	in := lines("/save first", list[0], "/load first", "/saves", "/load missing", "/quit")
	if err := NewSolo(session, saves, &out, clock.now).Run(context.Background(), SoloConfig{Level: 1, Seed: &seed}, in); err != nil {
		t.Fatalf("run: %v", err)
	}

	slot, ok := saves.slots["first"]
	if !ok {
		t.Fatalf("slot not saved")
	}
	if slot.Version != model.Version || slot.State.Seed != seed {
		t.Errorf("unexpected slot %#v", slot)
	}
	if len(session.Found()) != 0 {
		t.Errorf("expected no found words after load got %#v", session.Found())
	}
	if !strings.Contains(out.String(), "first  level 1") {
		t.Errorf("missing save listing in %q", out.String())
	}
	if !strings.Contains(out.String(), "slot missing not found") {
		t.Errorf("missing load error in %q", out.String())
	}
}

func TestSoloSavesDisabled(t *testing.T) {
	t.Parallel()

	clock := newClock()
	var out bytes.Buffer
	if err := NewSolo(solo.New(testPool(), clock.now), nil, &out, clock.now).Run(context.Background(), SoloConfig{Level: 1}, lines("/save x")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), ErrSavesDisabled.Error()) {
		t.Errorf("expected %q in %q", ErrSavesDisabled.Error(), out.String())
	}
}

func TestSoloPauseBlocksGuesses(t *testing.T) {
	t.Parallel()

	seed := int64(7)
	list := levelWords(t, seed)

	clock := newClock()
	session := solo.New(testPool(), clock.now)
	var out bytes.Buffer
	in := lines("/pause", list[0], "/resume", list[0], "/hint")
	if err := NewSolo(session, nil, &out, clock.now).Run(context.Background(), SoloConfig{Level: 1, Seed: &seed}, in); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := session.Found(); len(got) != 1 || got[0] != list[0] {
		t.Errorf("expected %#v got %#v", list[:1], got)
	}
	if !strings.Contains(out.String(), "game is paused") {
		t.Errorf("missing pause message in %q", out.String())
	}
	if !strings.Contains(out.String(), "letter word starts at row") {
		t.Errorf("missing hint in %q", out.String())
	}
}

func TestSoloTimeUp(t *testing.T) {
	t.Parallel()

	seed := int64(42)
	list := levelWords(t, seed)

	clock := newClock()
	clock.step = 200 * time.Second
	session := solo.New(testPool(), clock.now)
	var out bytes.Buffer
	if err := NewSolo(session, nil, &out, clock.now).Run(context.Background(), SoloConfig{Level: 1, Seed: &seed}, lines(list[0])); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(out.String(), "Time is up!") {
		t.Errorf("missing time up message in %q", out.String())
	}
	if len(session.Found()) != 0 {
		t.Errorf("guess accepted after time ran out: %#v", session.Found())
	}
}

func TestSoloInvalidLevel(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := NewSolo(solo.New(testPool(), nil), nil, &out, nil).Run(context.Background(), SoloConfig{Level: 0}, lines("/quit"))
	if !errors.Is(err, level.ErrInvalidLevel) {
		t.Errorf("expected %v got %v", level.ErrInvalidLevel, err)
	}
}
