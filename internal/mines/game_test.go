package mines

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g, err := NewGame(
		GameParams{Rows: 2, Cols: 2, Mines: 0}, "alice", Sampling,
		rand.New(rand.NewPCG(1, 2)), now,
	)
	require.NoError(t, err)

	assert.Zero(t, g.ID)
	assert.Equal(t, "alice", g.Owner)
	assert.Equal(t, Board{10, 10, 10, 10}, g.Board)
	assert.Equal(t, InProgress, g.Status)
	assert.Equal(t, 0, g.MinesLeft)
	assert.Zero(t, g.Timer)
	assert.Equal(t, now, g.DateCreated)
	assert.Equal(t, now, g.LastUpdated)
	assert.Equal(t, GameParams{Rows: 2, Cols: 2}, g.Params())
}

func TestNewGameMinesLeft(t *testing.T) {
	g, err := NewGame(
		GameParams{Rows: 5, Cols: 5, Mines: 7}, "bob", Independent,
		rand.New(rand.NewPCG(1, 2)), time.Now(),
	)
	require.NoError(t, err)
	assert.Equal(t, 7, g.Mines)
	assert.Equal(t, 7, g.MinesLeft)
	assert.LessOrEqual(t, g.Board.MineCount(), 7)
}

func TestNewGameInvalidParams(t *testing.T) {
	_, err := NewGame(
		GameParams{Rows: 0, Cols: 5}, "bob", Sampling,
		rand.New(rand.NewPCG(1, 2)), time.Now(),
	)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestApplyReplacesState(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g, err := NewGame(
		GameParams{Rows: 2, Cols: 2}, "alice", Sampling,
		rand.New(rand.NewPCG(1, 2)), created,
	)
	require.NoError(t, err)

	updated := created.Add(time.Minute)
	g.Apply(Update{
		Timer:     42,
		MinesLeft: 1,
		Board:     Board{0, 1, 10, 19},
		Status:    InProgress,
	}, updated)

	assert.Equal(t, int64(42), g.Timer)
	assert.Equal(t, 1, g.MinesLeft)
	assert.Equal(t, Board{0, 1, 10, 19}, g.Board)
	assert.Equal(t, InProgress, g.Status)
	assert.Equal(t, created, g.DateCreated)
	assert.Equal(t, updated, g.LastUpdated)
}

func TestApplyAfterTerminalStatus(t *testing.T) {
	g := &Game{Rows: 1, Cols: 2, Board: Board{10, 19}, Status: Lost}
	g.Apply(Update{Board: Board{10, 19}, Status: InProgress}, time.Now())
	assert.Equal(t, InProgress, g.Status)
}

func TestCloneDoesNotShareBoard(t *testing.T) {
	g := &Game{Board: Board{10, 10}}
	c := g.Clone()
	c.Board[0] = 19
	assert.Equal(t, Cell(10), g.Board[0])
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"IN_PROGRESS", InProgress},
		{"won", Won},
		{"LOST", Lost},
		{"IN_GAME", InProgress},
		{"GAME_WON", Won},
		{"GAME_LOST", Lost},
	}
	for _, test := range tests {
		s, err := ParseStatus(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, s)
		assert.True(t, s.Valid())
	}

	_, err := ParseStatus("PAUSED")
	assert.Error(t, err)
	assert.False(t, Status("PAUSED").Valid())
}
