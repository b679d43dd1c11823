package threes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Width is the board dimension.
const Width = 4

const numCells = Width * Width

// Rank is a tile value: 0 (empty), 1, 2, 3, 6, 12, 24, ...
type Rank int32

// MaxRank is the highest rank that can appear on a 4x4 board.
const MaxRank Rank = 98304

// ValidRank reports whether r is empty, 1, 2, or 3 doubled some number of times.
func ValidRank(r Rank) bool {
	switch {
	case r == 0 || r == 1 || r == 2:
		return true
	case r < 3 || r > MaxRank || r%3 != 0:
		return false
	}
	q := r / 3
	return q&(q-1) == 0
}

// Direction represents a push direction.
type Direction int

const (
	Down Direction = iota
	Up
	Left
	Right
)

// Directions lists every direction in ordinal order.
var Directions = [...]Direction{Down, Up, Left, Right}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Down:
		return "Down"
	case Up:
		return "Up"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= Down && d <= Right
}

// increasing reports whether the push moves tiles toward higher indexes.
func (d Direction) increasing() bool {
	return d == Down || d == Right
}

// ParseDirection parses a direction name, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down", "d":
		return Down, nil
	case "up", "u":
		return Up, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("threes: unknown direction %q", s)
}

// MarshalText encodes the direction by name, so logs read ["Down","Left",...].
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("threes: cannot encode %s", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Section is a single row or column.
type Section [Width]Rank

// Combine returns the merged rank for two adjacent tiles.
// A 1 and a 2 make 3; equal ranks of 3 or more double; nothing else merges,
// including a pair of 1s or a pair of 2s.
func Combine(a, b Rank) (Rank, bool) {
	switch {
	case a == 0 || b == 0:
		return 0, false
	case (a == 1 && b == 2) || (a == 2 && b == 1):
		return 3, true
	case a == b && a != 1 && a != 2:
		return 2 * a, true
	default:
		return 0, false
	}
}

// Shift pushes a section toward index 0, or toward the last index when
// increasing is set. Returns the new section and whether any tile moved.
func Shift(sec Section, increasing bool) (Section, bool) {
	if increasing {
		sec = reverse(sec)
	}
	out, moved := shiftDown(sec)
	if increasing {
		out = reverse(out)
	}
	return out, moved
}

// shiftDown pushes a section toward index 0. Tiles move at most one slot,
// and once anything has moved every tile above it follows without merging,
// so a line merges at most once per push.
func shiftDown(in Section) (Section, bool) {
	var out Section

	shifting := false
	moved := false
	for i := range Width - 1 {
		bot, top := in[i], in[i+1]

		if bot == 0 || shifting {
			out[i] = top
			shifting = true
			if top != 0 {
				moved = true
			}
			continue
		}

		if merged, ok := Combine(bot, top); ok {
			out[i] = merged
			shifting = true
			moved = true
			continue
		}

		// out[i+1] may be overwritten by the next iteration.
		out[i] = bot
		out[i+1] = top
	}

	return out, moved
}

func reverse(sec Section) Section {
	var out Section
	for i := range Width {
		out[i] = sec[Width-1-i]
	}
	return out
}

// Board is a 4x4 grid of ranks stored row-major.
// Boards are comparable and can be used as map keys.
type Board struct {
	cells [numCells]Rank
}

// FromRows builds a board from four rows, top to bottom.
func FromRows(rows [Width]Section) Board {
	var b Board
	for r, row := range rows {
		b.SetRow(r, row)
	}
	return b
}

// ParseBoard reads 16 whitespace-separated ranks in row-major order.
func ParseBoard(s string) (Board, error) {
	var b Board

	fields := strings.Fields(s)
	if len(fields) != numCells {
		return b, fmt.Errorf("threes: board needs %d cells, got %d", numCells, len(fields))
	}

	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return b, fmt.Errorf("threes: cell %d: %w", i, err)
		}
		r := Rank(v)
		if !ValidRank(r) {
			return b, fmt.Errorf("threes: cell %d: invalid rank %d", i, v)
		}
		b.cells[i] = r
	}
	return b, nil
}

// Get returns the rank at (row, col).
func (b Board) Get(row, col int) Rank {
	return b.cells[row*Width+col]
}

// Set writes a rank at (row, col).
func (b *Board) Set(row, col int, r Rank) {
	b.cells[row*Width+col] = r
}

// Row returns row r, left to right.
func (b Board) Row(r int) Section {
	var sec Section
	for i := range Width {
		sec[i] = b.cells[r*Width+i]
	}
	return sec
}

// SetRow replaces row r.
func (b *Board) SetRow(r int, sec Section) {
	for i := range Width {
		b.cells[r*Width+i] = sec[i]
	}
}

// Col returns column c, top to bottom.
func (b Board) Col(c int) Section {
	var sec Section
	for i := range Width {
		sec[i] = b.cells[i*Width+c]
	}
	return sec
}

// SetCol replaces column c.
func (b *Board) SetCol(c int, sec Section) {
	for i := range Width {
		b.cells[i*Width+c] = sec[i]
	}
}

// Rows returns all rows, top to bottom.
func (b Board) Rows() [Width]Section {
	var rows [Width]Section
	for i := range Width {
		rows[i] = b.Row(i)
	}
	return rows
}

// Cols returns all columns, left to right.
func (b Board) Cols() [Width]Section {
	var cols [Width]Section
	for i := range Width {
		cols[i] = b.Col(i)
	}
	return cols
}

// Values returns a copy of all cells in row-major order.
func (b Board) Values() [numCells]Rank {
	return b.cells
}

// IsEmpty reports whether no tile has been placed.
func (b Board) IsEmpty() bool {
	return b == Board{}
}

// MaxTile returns the highest rank on the board.
func (b Board) MaxTile() Rank {
	var best Rank
	for _, v := range b.cells {
		if v > best {
			best = v
		}
	}
	return best
}

// Shove pushes every row or column in direction d.
// Returns true if the board changed.
func (b *Board) Shove(d Direction) bool {
	increasing := d.increasing()

	modified := false
	switch d {
	case Down, Up:
		for i := range Width {
			col, changed := Shift(b.Col(i), increasing)
			if changed {
				modified = true
				b.SetCol(i, col)
			}
		}
	case Left, Right:
		for i := range Width {
			row, changed := Shift(b.Row(i), increasing)
			if changed {
				modified = true
				b.SetRow(i, row)
			}
		}
	}
	return modified
}

// Render returns the board as rows of fixed-width tiles separated by '|'.
func (b Board) Render() string {
	return strings.Join(b.renderRows(), "\n")
}

func (b Board) renderRows() []string {
	lines := make([]string, Width)
	for r := range Width {
		row := b.Row(r)
		tiles := make([]string, Width)
		for c, v := range row {
			tiles[c] = FormatRank(v)
		}
		lines[r] = strings.Join(tiles, "|")
	}
	return lines
}

// FormatRank renders a rank right-aligned in three columns; empty is blank.
func FormatRank(r Rank) string {
	if r == 0 {
		return "   "
	}
	return fmt.Sprintf("%3d", r)
}

// MarshalJSON encodes the board as four rows of ranks.
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

// UnmarshalJSON decodes four rows of ranks.
func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [Width]Section
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("threes: decode board: %w", err)
	}
	for _, row := range rows {
		for _, v := range row {
			if !ValidRank(v) {
				return fmt.Errorf("threes: decode board: invalid rank %d", v)
			}
		}
	}
	*b = FromRows(rows)
	return nil
}
