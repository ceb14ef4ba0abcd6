package engine

import (
	"fmt"
	"slices"

	"github.com/DoyleJ11/seat-roulette/internal/roster"
)

// Layout is the fixed grid shape. Rows below GroupARows seat GroupA.
type Layout struct {
	Rows       int
	Columns    int
	GroupARows int
}

var DefaultLayout = Layout{Rows: 8, Columns: 5, GroupARows: 4}

func (l Layout) Validate() error {
	if l.Rows < 1 || l.Columns < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidLayout, l.Rows, l.Columns)
	}
	if l.GroupARows < 0 || l.GroupARows > l.Rows {
		return fmt.Errorf("%w: group A rows %d of %d", ErrInvalidLayout, l.GroupARows, l.Rows)
	}
	return nil
}

func (l Layout) Size() int { return l.Rows * l.Columns }

type Seat struct {
	Row     int          `json:"row"`
	Column  int          `json:"column"`
	Group   roster.Group `json:"group"`
	Content string       `json:"content"`
}

func (s Seat) Empty() bool { return s.Content == "" }

// Grid stores seat contents in row-major order.
type Grid struct {
	layout Layout
	cells  []string
}

func NewGrid(l Layout) (*Grid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Grid{layout: l, cells: make([]string, l.Size())}, nil
}

func (g *Grid) Layout() Layout { return g.layout }

func (g *Grid) GroupFor(row int) roster.Group {
	if row < g.layout.GroupARows {
		return roster.GroupA
	}
	return roster.GroupB
}

func (g *Grid) index(row, col int) (int, error) {
	if row < 0 || row >= g.layout.Rows || col < 0 || col >= g.layout.Columns {
		return 0, fmt.Errorf("%w: (%d,%d)", ErrSeatOutOfRange, row, col)
	}
	return row*g.layout.Columns + col, nil
}

func (g *Grid) SeatAt(row, col int) (Seat, error) {
	i, err := g.index(row, col)
	if err != nil {
		return Seat{}, err
	}
	return Seat{Row: row, Column: col, Group: g.GroupFor(row), Content: g.cells[i]}, nil
}

// Assign fills an empty seat. Filled seats stay filled until ResetAll.
func (g *Grid) Assign(row, col int, name string) error {
	i, err := g.index(row, col)
	if err != nil {
		return err
	}
	if g.cells[i] != "" {
		return fmt.Errorf("%w: (%d,%d)", ErrSeatAlreadyAssigned, row, col)
	}
	g.cells[i] = name
	return nil
}

func (g *Grid) ResetAll() {
	clear(g.cells)
}

func (g *Grid) Cells() []string { return slices.Clone(g.cells) }

// Restore overwrites every cell. The length must match the layout.
func (g *Grid) Restore(cells []string) error {
	if len(cells) != len(g.cells) {
		return fmt.Errorf("%w: got %d cells, want %d", ErrInvalidCells, len(cells), len(g.cells))
	}
	copy(g.cells, cells)
	return nil
}

func (g *Grid) Seats() []Seat {
	seats := make([]Seat, 0, len(g.cells))
	for i, c := range g.cells {
		row, col := i/g.layout.Columns, i%g.layout.Columns
		seats = append(seats, Seat{Row: row, Column: col, Group: g.GroupFor(row), Content: c})
	}
	return seats
}

// Seated returns the names filled into g's seats, in grid order.
func (g *Grid) Seated(group roster.Group) []string {
	names := []string{}
	for _, s := range g.Seats() {
		if s.Group == group && !s.Empty() {
			names = append(names, s.Content)
		}
	}
	return names
}

func (g *Grid) EmptyCount(group roster.Group) int {
	n := 0
	for _, s := range g.Seats() {
		if s.Group == group && s.Empty() {
			n++
		}
	}
	return n
}
