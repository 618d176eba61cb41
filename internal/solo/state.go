package solo

import (
	"fmt"
	"time"

	"github.com/bloops-games/wordmix/internal/grid"
	"github.com/bloops-games/wordmix/internal/level"
)

// State is a snapshot of a running level. Elapsed excludes paused time,
// PauseTotal includes the current pause when Paused is set.
type State struct {
	Level      int               `json:"level"`
	Seed       int64             `json:"seed"`
	Grid       *grid.Grid        `json:"grid"`
	Placements []grid.PlacedWord `json:"placements"`
	Found      []string          `json:"found_words"`
	Elapsed    time.Duration     `json:"elapsed"`
	PauseTotal time.Duration     `json:"pause_total"`
	Paused     bool              `json:"paused"`
}

func (s *Session) State() (State, error) {
	if !s.active {
		return State{}, ErrNoLevel
	}

	pauseTotal := s.pauseTotal
	if s.paused {
		pauseTotal += s.now().Sub(s.pausedAt)
	}

	return State{
		Level:      s.config.Number,
		Seed:       s.seed,
		Grid:       s.grid,
		Placements: s.Placements(),
		Found:      s.Found(),
		Elapsed:    s.elapsed(),
		PauseTotal: pauseTotal,
		Paused:     s.paused,
	}, nil
}

// Restore replaces the current game with st. The timer continues from
// st.Elapsed; a paused snapshot stays paused.
func (s *Session) Restore(st State) error {
	config, err := level.Resolve(st.Level)
	if err != nil {
		return fmt.Errorf("resolve level: %w", err)
	}
	if st.Grid == nil || len(st.Placements) == 0 {
		return fmt.Errorf("%w: missing grid", ErrInvalidState)
	}
	if st.Grid.Size() != config.GridSize {
		return fmt.Errorf("%w: grid size %d, level %d expects %d",
			ErrInvalidState, st.Grid.Size(), config.Number, config.GridSize)
	}
	if !st.Grid.Complete() {
		return fmt.Errorf("%w: grid has empty cells", ErrInvalidState)
	}

	targets := make(map[string]struct{}, len(st.Placements))
	for _, p := range st.Placements {
		if !p.Matches(st.Grid) {
			return fmt.Errorf("%w: placement %q does not match the grid", ErrInvalidState, p.Word)
		}
		if _, ok := targets[p.Word]; ok {
			return fmt.Errorf("%w: placement %q listed twice", ErrInvalidState, p.Word)
		}
		targets[p.Word] = struct{}{}
	}

	seen := make(map[string]struct{}, len(st.Found))
	for _, w := range st.Found {
		if _, ok := targets[w]; !ok {
			return fmt.Errorf("%w: found word %q is not in the grid", ErrInvalidState, w)
		}
		if _, ok := seen[w]; ok {
			return fmt.Errorf("%w: found word %q listed twice", ErrInvalidState, w)
		}
		seen[w] = struct{}{}
	}

	now := s.now()
	s.active = true
	s.config = config
	s.seed = st.Seed
	s.grid = st.Grid
	s.placed = append([]grid.PlacedWord(nil), st.Placements...)
	s.found = append([]string(nil), st.Found...)
	s.startedAt = now.Add(-st.Elapsed - st.PauseTotal)
	s.pauseTotal = st.PauseTotal
	s.paused = st.Paused
	s.pausedAt = time.Time{}
	if st.Paused {
		s.pausedAt = now
	}

	return nil
}
