package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

type Status string

const (
	InProgress Status = "IN_PROGRESS"
	Won        Status = "WON"
	Lost       Status = "LOST"
)

func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN_PROGRESS", "IN_GAME":
		return InProgress, nil
	case "WON", "GAME_WON":
		return Won, nil
	case "LOST", "GAME_LOST":
		return Lost, nil
	default:
		return "", fmt.Errorf("unknown game status %q", s)
	}
}

func (s Status) Valid() bool {
	return s == InProgress || s == Won || s == Lost
}

type Game struct {
	ID          int64
	Owner       string
	Rows        int
	Cols        int
	Mines       int
	MinesLeft   int
	Board       Board
	Timer       int64
	Status      Status
	DateCreated time.Time
	LastUpdated time.Time
}

// NewGame builds an unsaved game for owner. The id is assigned by the store.
func NewGame(
	params GameParams, owner string, placement Placement, r *rand.Rand, now time.Time,
) (*Game, error) {
	board, err := params.Generate(placement, r)
	if err != nil {
		return nil, err
	}
	game := &Game{
		Owner:       owner,
		Rows:        params.Rows,
		Cols:        params.Cols,
		Mines:       params.Mines,
		MinesLeft:   params.Mines,
		Board:       board,
		Status:      InProgress,
		DateCreated: now,
		LastUpdated: now,
	}
	return game, nil
}

func (g *Game) Params() GameParams {
	return GameParams{Rows: g.Rows, Cols: g.Cols, Mines: g.Mines}
}

func (g *Game) Clone() *Game {
	c := *g
	c.Board = g.Board.Clone()
	return &c
}

// Update carries the client's view of a game after a move. It replaces the
// stored state as a whole; nothing in it is checked against the board.
type Update struct {
	Timer     int64
	MinesLeft int
	Board     Board
	Status    Status
}

func (g *Game) Apply(u Update, now time.Time) {
	g.Timer = u.Timer
	g.MinesLeft = u.MinesLeft
	g.Board = u.Board
	g.Status = u.Status
	g.LastUpdated = now
}
