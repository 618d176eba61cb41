// Package console is the terminal front end: line oriented loops for solo
// and online play.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bloops-games/wordmix/internal/database/save/model"
	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/solo"
	"github.com/enescakir/emoji"
)

var ErrSavesDisabled = fmt.Errorf("saving is disabled")

// SaveStore keeps named solo snapshots.
type SaveStore interface {
	Put(slot model.Slot) error
	Fetch(name string) (model.Slot, error)
	List() ([]model.Slot, error)
}

type SoloConfig struct {
	Level int
	// nil picks a random seed
	Seed *int64
}

func NewSolo(session *solo.Session, saves SaveStore, out io.Writer, now func() time.Time) *Solo {
	if now == nil {
		now = time.Now
	}
	return &Solo{session: session, saves: saves, out: out, now: now}
}

type Solo struct {
	session *solo.Session
	saves   SaveStore
	out     io.Writer
	now     func() time.Time
}

// Run starts config.Level and plays it from the lines of in until /quit, the
// end of input, the timer running out or ctx being done.
func (s *Solo) Run(ctx context.Context, config SoloConfig, in io.Reader) error {
	logger := logging.FromContext(ctx).Named("console.Solo.Run")

	if _, err := s.session.StartLevel(config.Level, config.Seed); err != nil {
		return fmt.Errorf("start level %d: %w", config.Level, err)
	}
	s.print(renderLevel(s.session))
	s.print(helpSolo)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		if s.session.IsTimeUp() && !s.session.Paused() {
			s.printf("%s Time is up! Final score %d\n", emoji.Stopwatch, s.session.Score())
			return nil
		}

		quit, err := s.exec(strings.TrimSpace(scanner.Text()))
		if err != nil {
			logger.Debugf("command failed: %v", err)
			s.printf("%s %v\n", emoji.CrossMark, err)
		}
		if quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (s *Solo) exec(line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, s.guess(line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit":
		s.printf("%s Final score %d\n", emoji.ChequeredFlag, s.session.Score())
		return true, nil
	case "/help":
		s.print(helpSolo)
	case "/grid":
		s.print(renderLevel(s.session))
	case "/time":
		s.printf("%s %.0fs left\n", emoji.Stopwatch, max(0, s.session.RemainingTime()))
	case "/pause":
		s.session.Pause()
		s.print("paused\n")
	case "/resume":
		s.session.Resume()
		s.print("resumed\n")
	case "/hint":
		s.hint()
	case "/next":
		if _, err := s.session.NextLevel(); err != nil {
			return false, fmt.Errorf("next level: %w", err)
		}
		s.print(renderLevel(s.session))
	case "/save":
		return false, s.save(arg)
	case "/load":
		return false, s.load(arg)
	case "/saves":
		return false, s.list()
	default:
		return false, fmt.Errorf("unknown command %s", cmd)
	}

	return false, nil
}

func (s *Solo) guess(word string) error {
	if s.session.Paused() {
		return fmt.Errorf("game is paused, /resume to continue")
	}

	if !s.session.CheckWord(word) {
		s.printf("%s %s\n", emoji.ThumbsDown, strings.ToUpper(word))
		return nil
	}

	s.printf("%s %s (%d/%d)\n", emoji.ThumbsUp, strings.ToUpper(word), len(s.session.Found()), len(s.session.Words()))
	if !s.session.IsLevelComplete() {
		return nil
	}

	s.printf("%s Level %d complete! Score %d\n", emoji.PartyPopper, s.session.Level(), s.session.Score())
	if _, err := s.session.NextLevel(); err != nil {
		return fmt.Errorf("next level: %w", err)
	}
	s.print(renderLevel(s.session))

	return nil
}

func (s *Solo) hint() {
	p, ok := s.session.Hint()
	if !ok {
		s.print("nothing left to find\n")
		return
	}

	cells := p.Cells()
	first := cells[0]
	if p.Reversed {
		first = cells[len(cells)-1]
	}
	s.printf("%s a %d letter word starts at row %d, col %d\n", emoji.Bookmark, p.Length, first[0], first[1])
}

func (s *Solo) save(name string) error {
	if s.saves == nil {
		return ErrSavesDisabled
	}
	if name == "" {
		return fmt.Errorf("usage: /save NAME")
	}

	state, err := s.session.State()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := s.saves.Put(model.NewSlot(name, state, s.session.Score(), s.now())); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	s.printf("%s saved as %s\n", emoji.CheckMark, name)
	return nil
}

func (s *Solo) load(name string) error {
	if s.saves == nil {
		return ErrSavesDisabled
	}
	if name == "" {
		return fmt.Errorf("usage: /load NAME")
	}

	slot, err := s.saves.Fetch(name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := s.session.Restore(slot.State); err != nil {
		return fmt.Errorf("restore %s: %w", name, err)
	}

	s.print(renderLevel(s.session))
	return nil
}

func (s *Solo) list() error {
	if s.saves == nil {
		return ErrSavesDisabled
	}

	slots, err := s.saves.List()
	if err != nil {
		return fmt.Errorf("list saves: %w", err)
	}
	if len(slots) == 0 {
		s.print("no saves\n")
		return nil
	}
	for _, slot := range slots {
		s.printf("%s %s  level %d  score %d  %s\n",
			emoji.CardIndex, slot.Name, slot.State.Level, slot.Score, slot.SavedAt.Format(time.RFC3339))
	}
	return nil
}

func (s *Solo) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Solo) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
