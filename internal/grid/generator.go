// Package grid generates word-search grids.
//
// Generation is deterministic: all random decisions are drawn from one
// rng.Rand in a fixed order, so the same seed, config and pool always yield
// the same grid and placements.
package grid

import (
	"fmt"
	"sort"

	"github.com/bloops-games/wordmix/internal/rng"
	"github.com/bloops-games/wordmix/internal/words"
)

const (
	maxGridAttempts    = 5
	minPlacedWords     = 3
	reverseProbability = 0.6
	diagonalWeight     = 3
	minPlaceAttempts   = 200
	placeAttemptsScale = 20
	fillerLetters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var ErrGenerationFailure = fmt.Errorf("grid generation failure")

type Config struct {
	Size          int
	NumWords      int
	AllowDiagonal bool
	AllowReverse  bool
}

type Generator struct {
	rnd *rng.Rand
}

func NewGenerator(rnd *rng.Rand) *Generator {
	return &Generator{rnd: rnd}
}

func (g *Generator) Seed() int64 {
	return g.rnd.Seed()
}

// Generate fills a config.Size grid with words from pool. It returns
// ErrGenerationFailure when no word could be placed at all.
func (g *Generator) Generate(config Config, pool []string) (*Grid, []PlacedWord, error) {
	if config.Size < minPlacedWords {
		return nil, nil, fmt.Errorf("%w: grid size %d", ErrGenerationFailure, config.Size)
	}

	suitable := suitableWords(pool, config.Size)
	requested := config.NumWords
	if len(suitable) < requested {
		requested = max(minPlacedWords, len(suitable))
	}
	required := max(minPlacedWords, requested/2)

	if len(suitable) > 0 {
		for attempt := 0; attempt < maxGridAttempts; attempt++ {
			grid := New(config.Size)
			chosen := rng.Sample(g.rnd, suitable, requested)
			sort.SliceStable(chosen, func(i, j int) bool {
				return len(chosen[i]) > len(chosen[j])
			})

			var placed []PlacedWord
			for _, word := range chosen {
				if p, ok := g.place(grid, word, config); ok {
					placed = append(placed, p)
				}
			}

			if len(placed) >= required {
				g.fill(grid)
				return grid, placed, nil
			}
		}
	}

	grid, placed := fallback(config.Size, requested, suitable)
	if len(placed) == 0 {
		return nil, nil, fmt.Errorf("%w: no word fits a %dx%d grid", ErrGenerationFailure, config.Size, config.Size)
	}
	g.fill(grid)

	return grid, placed, nil
}

func (g *Generator) directions(config Config) []Direction {
	if !config.AllowDiagonal {
		return []Direction{Horizontal, Vertical}
	}

	return rng.Weighted(
		[]Direction{Horizontal, Vertical, DiagonalDown, DiagonalUp},
		[]int{1, 1, diagonalWeight, diagonalWeight},
	)
}

func (g *Generator) place(grid *Grid, word string, config Config) (PlacedWord, bool) {
	dirs := g.directions(config)

	letters := word
	reversed := false
	if config.AllowReverse && g.rnd.Float64() < reverseProbability {
		letters = reverse(word)
		reversed = true
	}

	attempts := max(minPlaceAttempts, config.Size*placeAttemptsScale)
	for i := 0; i < attempts; i++ {
		row := g.rnd.IntN(config.Size)
		col := g.rnd.IntN(config.Size)
		dir := rng.Choice(g.rnd, dirs)

		if canPlace(grid, letters, row, col, dir) {
			write(grid, letters, row, col, dir)
			return PlacedWord{
				Word:      word,
				StartRow:  row,
				StartCol:  col,
				Direction: dir,
				Length:    len(word),
				Reversed:  reversed,
			}, true
		}
	}

	return PlacedWord{}, false
}

func (g *Generator) fill(grid *Grid) {
	for i, b := range grid.cells {
		if b == empty {
			grid.cells[i] = fillerLetters[g.rnd.IntN(len(fillerLetters))]
		}
	}
}

// fallback lays the shortest words out horizontally on evenly spaced rows.
// It uses no randomness.
func fallback(size, requested int, suitable []string) (*Grid, []PlacedWord) {
	var short []string
	for _, w := range suitable {
		if len(w) <= size/2 {
			short = append(short, w)
		}
	}
	sort.SliceStable(short, func(i, j int) bool {
		return len(short[i]) < len(short[j])
	})
	if len(short) > requested {
		short = short[:requested]
	}

	grid := New(size)
	if len(short) == 0 {
		return grid, nil
	}

	var placed []PlacedWord
	spacing := max(2, size/(len(short)+1))
	for i, word := range short {
		row := min(i*spacing+1, size-1)
		if !canPlace(grid, word, row, 0, Horizontal) {
			continue
		}
		write(grid, word, row, 0, Horizontal)
		placed = append(placed, PlacedWord{
			Word:      word,
			StartRow:  row,
			StartCol:  0,
			Direction: Horizontal,
			Length:    len(word),
		})
	}

	return grid, placed
}

func canPlace(grid *Grid, letters string, row, col int, dir Direction) bool {
	dr, dc := dir.Vector()
	for i := 0; i < len(letters); i++ {
		r, c := row+i*dr, col+i*dc
		if !grid.InBounds(r, c) {
			return false
		}
		if cur := grid.At(r, c); cur != empty && cur != letters[i] {
			return false
		}
	}
	return true
}

func write(grid *Grid, letters string, row, col int, dir Direction) {
	dr, dc := dir.Vector()
	for i := 0; i < len(letters); i++ {
		grid.Set(row+i*dr, col+i*dc, letters[i])
	}
}

func suitableWords(pool []string, size int) []string {
	seen := make(map[string]struct{}, len(pool))
	var out []string
	for _, w := range pool {
		w = words.Normalize(w)
		if !words.Valid(w) || len(w) > size {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
