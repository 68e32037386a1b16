package mines

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"strings"
)

type GameParams struct {
	Rows, Cols, Mines int
}

func (p GameParams) Cells() int {
	return p.Rows * p.Cols
}

// MaxCells bounds the board size so Rows*Cols never overflows.
const MaxCells = 1 << 24

var ErrInvalidParams = fmt.Errorf("invalid game params")

func (p GameParams) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d",
			ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.Rows > MaxCells/p.Cols {
		return fmt.Errorf("%w: grid %dx%d exceeds %d cells",
			ErrInvalidParams, p.Rows, p.Cols, MaxCells)
	}
	if p.Mines < 0 {
		return fmt.Errorf("%w: negative mine count %d", ErrInvalidParams, p.Mines)
	}
	return nil
}

// Placement selects how mines are dropped on a fresh board.
type Placement int

const (
	// Sampling picks distinct cells, so min(Mines, Rows*Cols) mines land.
	Sampling Placement = iota
	// Independent makes exactly Mines uniform draws and skips draws that hit
	// an existing mine without retrying. Fewer mines than requested may land.
	// Boards made this way match the ones the service produced historically.
	Independent
)

func (p Placement) String() string {
	switch p {
	case Sampling:
		return "sampling"
	case Independent:
		return "independent"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sampling":
		return Sampling, nil
	case "independent", "legacy":
		return Independent, nil
	default:
		return 0, fmt.Errorf("unknown mine placement %q", s)
	}
}

// NewRand returns a generator seeded from the runtime's random hash seed.
// Each board gets its own so concurrent games never share generator state.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// GenerateBoard returns a covered board with mines placed by [Sampling].
func GenerateBoard(rows, cols, mines int, r *rand.Rand) (Board, error) {
	return GameParams{Rows: rows, Cols: cols, Mines: mines}.Generate(Sampling, r)
}

func (p GameParams) Generate(placement Placement, r *rand.Rand) (Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	board := make(Board, p.Cells())
	for i := range board {
		board[i] = CoveredCell
	}

	switch placement {
	case Sampling:
		p.placeSampled(board, r)
	case Independent:
		p.placeIndependent(board, r)
	default:
		return nil, fmt.Errorf("unknown mine placement %d", placement)
	}

	return board, nil
}

func (p GameParams) placeSampled(board Board, r *rand.Rand) {
	/*
	 * Write down the list of possible mine locations, then pick n off the
	 * list at random, moving the tail into each hole we make.
	 */
	candidates := make([]int, len(board))
	for i := range candidates {
		candidates[i] = i
	}

	k := len(candidates)
	for range min(p.Mines, len(board)) {
		i := r.IntN(k)
		p.plantMine(board, candidates[i])
		k--
		candidates[i] = candidates[k]
	}
}

func (p GameParams) placeIndependent(board Board, r *rand.Rand) {
	for range p.Mines {
		i := r.IntN(len(board))
		if board[i] == CoveredMine {
			continue
		}
		p.plantMine(board, i)
	}
}

// plantMine turns cell i into a covered mine and bumps the count of every
// neighbour that is not a mine. Neighbours are clipped on both axes.
func (p GameParams) plantMine(board Board, i int) {
	board[i] = CoveredMine

	x, y := i%p.Cols, i/p.Cols
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			xx, yy := x+dx, y+dy
			if (dx == 0 && dy == 0) ||
				xx < 0 || xx >= p.Cols ||
				yy < 0 || yy >= p.Rows {
				continue
			}
			j := yy*p.Cols + xx
			if !board[j].IsMine() {
				board[j]++
			}
		}
	}
}
