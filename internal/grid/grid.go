package grid

import (
	"encoding/json"
	"fmt"

	"github.com/bloops-games/wordmix/internal/strpool"
)

const empty byte = 0

type Direction string

const (
	Horizontal          Direction = "horizontal"
	Vertical            Direction = "vertical"
	DiagonalDown        Direction = "diagonal_down"
	DiagonalUp          Direction = "diagonal_up"
	HorizontalReverse   Direction = "horizontal_reverse"
	VerticalReverse     Direction = "vertical_reverse"
	DiagonalDownReverse Direction = "diagonal_down_reverse"
	DiagonalUpReverse   Direction = "diagonal_up_reverse"
)

var vectors = map[Direction][2]int{
	Horizontal:          {0, 1},
	Vertical:            {1, 0},
	DiagonalDown:        {1, 1},
	DiagonalUp:          {-1, 1},
	HorizontalReverse:   {0, -1},
	VerticalReverse:     {-1, 0},
	DiagonalDownReverse: {-1, -1},
	DiagonalUpReverse:   {1, -1},
}

// Vector returns the (row, col) step of d. Unknown directions step nowhere.
func (d Direction) Vector() (int, int) {
	v := vectors[d]
	return v[0], v[1]
}

func (d Direction) Valid() bool {
	_, ok := vectors[d]
	return ok
}

// PlacedWord is a word written into a grid. Word is always the original text;
// Reversed tells whether its letters were written backwards along Direction.
type PlacedWord struct {
	Word      string    `json:"word"`
	StartRow  int       `json:"start_row"`
	StartCol  int       `json:"start_col"`
	Direction Direction `json:"direction"`
	Length    int       `json:"length"`
	Reversed  bool      `json:"reversed"`
}

// Cells returns the (row, col) coordinates covered by the placement.
func (p PlacedWord) Cells() [][2]int {
	dr, dc := p.Direction.Vector()
	out := make([][2]int, p.Length)
	for i := 0; i < p.Length; i++ {
		out[i] = [2]int{p.StartRow + i*dr, p.StartCol + i*dc}
	}
	return out
}

// Matches reports whether g spells p.Word along p's cells, backwards when
// p.Reversed is set.
func (p PlacedWord) Matches(g *Grid) bool {
	if !p.Direction.Valid() || p.Length != len(p.Word) || p.Length == 0 {
		return false
	}
	read, ok := g.Read(p)
	if !ok {
		return false
	}
	if p.Reversed {
		read = reverse(read)
	}
	return read == p.Word
}

// Grid is a square matrix of uppercase letters.
type Grid struct {
	size  int
	cells []byte
}

func New(size int) *Grid {
	return &Grid{size: size, cells: make([]byte, size*size)}
}

func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// At returns the letter at (row, col), or 0 for an empty cell.
func (g *Grid) At(row, col int) byte {
	return g.cells[row*g.size+col]
}

func (g *Grid) Set(row, col int, b byte) {
	g.cells[row*g.size+col] = b
}

// Complete reports whether no cell is empty.
func (g *Grid) Complete() bool {
	for _, b := range g.cells {
		if b == empty {
			return false
		}
	}
	return true
}

// Rows returns each row as a string. Empty cells render as '.'.
func (g *Grid) Rows() []string {
	out := make([]string, g.size)
	row := make([]byte, g.size)
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			b := g.At(r, c)
			if b == empty {
				b = '.'
			}
			row[c] = b
		}
		out[r] = string(row)
	}
	return out
}

// Read returns the letters covered by p as they appear in the grid.
func (g *Grid) Read(p PlacedWord) (string, bool) {
	buf := make([]byte, 0, p.Length)
	for _, cell := range p.Cells() {
		if !g.InBounds(cell[0], cell[1]) {
			return "", false
		}
		buf = append(buf, g.At(cell[0], cell[1]))
	}
	return string(buf), true
}

// String renders the grid with spaced letters and row/column indexes.
func (g *Grid) String() string {
	buf := strpool.Get()
	defer strpool.Put(buf)

	buf.WriteString("   ")
	for c := 0; c < g.size; c++ {
		fmt.Fprintf(buf, "%3d", c)
	}
	buf.WriteByte('\n')
	for r, row := range g.Rows() {
		fmt.Fprintf(buf, "%3d", r)
		for i := 0; i < len(row); i++ {
			buf.WriteString("  ")
			buf.WriteByte(row[i])
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// MarshalJSON encodes the grid as rows of one-letter strings.
func (g *Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]string, g.size)
	for r := 0; r < g.size; r++ {
		rows[r] = make([]string, g.size)
		for c := 0; c < g.size; c++ {
			rows[r][c] = string(g.At(r, c))
		}
	}
	return json.Marshal(rows)
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	parsed := New(len(rows))
	for r, row := range rows {
		if len(row) != len(rows) {
			return fmt.Errorf("grid row %d: expected %d cells got %d", r, len(rows), len(row))
		}
		for c, cell := range row {
			if len(cell) != 1 {
				return fmt.Errorf("grid cell %d,%d: expected one letter got %q", r, c, cell)
			}
			parsed.Set(r, c, cell[0])
		}
	}

	*g = *parsed
	return nil
}
