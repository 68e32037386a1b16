package mines

import (
	"fmt"
	"strconv"
	"strings"
)

/*
 * Each cell of a board is a single integer in one of the following bands:
 *
 *	- 0 to 8 mean the cell is open and has a surrounding mine count.
 *
 *	- 9 means the cell is an open mine (the one the player hit).
 *
 *	- 10 to 18 mean the cell is covered, holds no mine, and has a
 *	  surrounding mine count of value-10.
 *
 *	- 19 means the cell is a covered mine.
 *
 *	- 20 to 28 mean the cell is marked, holds no mine, and has a
 *	  surrounding mine count of value-20.
 *
 *	- 29 means the cell is a marked mine.
 *
 * Clients render boards straight from these values and existing boards are
 * stored in this form, so the bands must not move.
 */
type Cell int

const (
	EmptyCell    Cell = 0
	ExplodedMine Cell = 9
	CoveredCell  Cell = 10
	CoveredMine  Cell = 19
	MarkedCell   Cell = 20
	MarkedMine   Cell = 29

	coveredOffset = 10
	markedOffset  = 20
	maxAdjacent   = 8
)

type CellState struct {
	Covered bool
	Marked  bool
	Mine    bool
	// Adjacent is the number of neighbouring mines. Always 0 for mines.
	Adjacent int
}

type InvalidCellError struct {
	message string
}

// [InvalidCellError] implements [error]
func (e InvalidCellError) Error() string {
	return e.message
}

var ErrInvalidCell = InvalidCellError{"invalid cell"}

func (e InvalidCellError) Is(target error) bool {
	_, ok := target.(InvalidCellError)
	return ok
}

func Decode(c Cell) (CellState, error) {
	switch {
	case c < 0 || c > MarkedMine:
		return CellState{}, InvalidCellError{
			fmt.Sprintf("cell value %d out of range", c),
		}
	case c == ExplodedMine:
		return CellState{Mine: true}, nil
	case c == CoveredMine:
		return CellState{Covered: true, Mine: true}, nil
	case c == MarkedMine:
		return CellState{Covered: true, Marked: true, Mine: true}, nil
	case c < ExplodedMine:
		return CellState{Adjacent: int(c)}, nil
	case c < CoveredMine:
		return CellState{Covered: true, Adjacent: int(c - coveredOffset)}, nil
	default:
		return CellState{
			Covered: true, Marked: true, Adjacent: int(c - markedOffset),
		}, nil
	}
}

func Encode(s CellState) (Cell, error) {
	if s.Marked && !s.Covered {
		return 0, InvalidCellError{"a marked cell must be covered"}
	}
	if s.Mine {
		switch {
		case s.Marked:
			return MarkedMine, nil
		case s.Covered:
			return CoveredMine, nil
		default:
			return ExplodedMine, nil
		}
	}
	if s.Adjacent < 0 || s.Adjacent > maxAdjacent {
		return 0, InvalidCellError{
			fmt.Sprintf("adjacent mine count %d out of range", s.Adjacent),
		}
	}
	switch {
	case s.Marked:
		return Cell(markedOffset + s.Adjacent), nil
	case s.Covered:
		return Cell(coveredOffset + s.Adjacent), nil
	default:
		return Cell(s.Adjacent), nil
	}
}

func (c Cell) Valid() bool {
	return EmptyCell <= c && c <= MarkedMine
}

func (c Cell) IsMine() bool {
	return c == ExplodedMine || c == CoveredMine || c == MarkedMine
}

func (c Cell) Covered() bool {
	return c >= CoveredCell && c <= MarkedMine
}

func (c Cell) Marked() bool {
	return c >= MarkedCell && c <= MarkedMine
}

// Adjacent returns the surrounding mine count, or -1 for mines and invalid
// values.
func (c Cell) Adjacent() int {
	s, err := Decode(c)
	if err != nil || s.Mine {
		return -1
	}
	return s.Adjacent
}

func (c Cell) String() string {
	s, err := Decode(c)
	switch {
	case err != nil:
		return "!"
	case s.Marked:
		return "F"
	case s.Covered:
		return "#"
	case s.Mine:
		return "*"
	case s.Adjacent == 0:
		return "."
	default:
		return strconv.Itoa(s.Adjacent)
	}
}

// Board holds cells in row-major order: index = row*cols + col.
type Board []Cell

func (b Board) MineCount() int {
	n := 0
	for _, c := range b {
		if c.IsMine() {
			n++
		}
	}
	return n
}

func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	return append(Board(nil), b...)
}

// Validate checks that every cell decodes. It does not relate the board to
// any game dimensions.
func (b Board) Validate() error {
	for i, c := range b {
		if !c.Valid() {
			return fmt.Errorf("cell %d: %w", i, InvalidCellError{
				fmt.Sprintf("cell value %d out of range", c),
			})
		}
	}
	return nil
}

func (b Board) ToString(cols int) string {
	if cols <= 0 {
		return ""
	}
	var sb strings.Builder
	for i, c := range b {
		sb.WriteString(c.String())
		if (i+1)%cols == 0 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
