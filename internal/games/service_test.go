package games

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-games/internal/hub"
	"github.com/vancomm/minesweeper-games/internal/mines"
	"github.com/vancomm/minesweeper-games/internal/repository"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestService(opts ...Option) (*Service, *clock) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{
		WithClock(c.now),
		WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }),
	}, opts...)
	return NewService(repository.NewMemory(), opts...), c
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, c := newTestService()

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 2, Cols: 2, Mines: 0})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.Equal(t, mines.Board{10, 10, 10, 10}, g.Board)
	assert.Equal(t, mines.InProgress, g.Status)
	assert.Equal(t, c.now(), g.DateCreated)

	fetched, err := s.Get(ctx, "alice", g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Board, fetched.Board)
}

func TestCreateInvalidParams(t *testing.T) {
	s, _ := newTestService()
	_, err := s.Create(context.Background(), "alice", mines.GameParams{Rows: 0, Cols: 3})
	assert.ErrorIs(t, err, mines.ErrInvalidParams)
}

func TestCreateUsesPlacement(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(WithPlacement(mines.Independent))

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 1, Cols: 1, Mines: 5})
	require.NoError(t, err)
	assert.Equal(t, mines.Board{19}, g.Board)
	assert.Equal(t, 5, g.MinesLeft)
}

func TestUpdateScenario(t *testing.T) {
	ctx := context.Background()
	s, c := newTestService()

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 2, Cols: 2, Mines: 0})
	require.NoError(t, err)

	c.advance(time.Minute)
	updated, err := s.Update(ctx, "alice", g.ID, mines.Update{
		Timer:     42,
		MinesLeft: 1,
		Board:     mines.Board{0, 1, 10, 19},
		Status:    mines.InProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, mines.Board{0, 1, 10, 19}, updated.Board)

	fetched, err := s.Get(ctx, "alice", g.ID)
	require.NoError(t, err)
	assert.Equal(t, mines.Board{0, 1, 10, 19}, fetched.Board)
	assert.Equal(t, 1, fetched.MinesLeft)
	assert.Equal(t, int64(42), fetched.Timer)
	assert.Equal(t, g.DateCreated, fetched.DateCreated)
	assert.True(t, fetched.LastUpdated.After(g.LastUpdated))
}

func TestUpdateFinishedGame(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 1, Cols: 2, Mines: 1})
	require.NoError(t, err)
	_, err = s.Update(ctx, "alice", g.ID, mines.Update{Board: g.Board, Status: mines.Lost})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "alice", g.ID, mines.Update{Board: g.Board, Status: mines.InProgress})
	require.NoError(t, err)
	assert.Equal(t, mines.InProgress, updated.Status)
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 3, Cols: 3, Mines: 1})
	require.NoError(t, err)

	_, err = s.Get(ctx, "bob", g.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Update(ctx, "bob", g.ID, mines.Update{Board: mines.Board{0}})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, s.Delete(ctx, "bob", g.ID), ErrForbidden)

	_, _, _, err = s.Watch(ctx, "bob", g.ID)
	assert.ErrorIs(t, err, ErrNoHub)

	fetched, err := s.Get(ctx, "alice", g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Board, fetched.Board, "forbidden update must not change the game")
}

func TestNotFoundBeforeOwnership(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(WithHub(hub.New()))

	_, err := s.Get(ctx, "bob", 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, "bob", 999, mines.Update{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "bob", 999), ErrNotFound)
	_, _, _, err = s.Watch(ctx, "bob", 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 2, Cols: 2})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "alice", g.ID))

	_, err = s.Get(ctx, "alice", g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "alice", g.ID), ErrNotFound)
}

func TestListAndDeleteAllAreScoped(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(WithHub(hub.New()))

	for range 2 {
		_, err := s.Create(ctx, "alice", mines.GameParams{Rows: 2, Cols: 2})
		require.NoError(t, err)
	}
	bobs, err := s.Create(ctx, "bob", mines.GameParams{Rows: 2, Cols: 2})
	require.NoError(t, err)

	games, err := s.List(ctx, "alice", Filter{})
	require.NoError(t, err)
	assert.Len(t, games, 2)

	won := mines.Won
	games, err = s.List(ctx, "alice", Filter{Status: &won})
	require.NoError(t, err)
	assert.Empty(t, games)

	n, err := s.DeleteAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	games, err = s.List(ctx, "alice", Filter{})
	require.NoError(t, err)
	assert.Empty(t, games)

	_, err = s.Get(ctx, "bob", bobs.ID)
	assert.NoError(t, err)
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(WithHub(hub.New()))

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 2, Cols: 2})
	require.NoError(t, err)

	current, updates, cancel, err := s.Watch(ctx, "alice", g.ID)
	require.NoError(t, err)
	defer cancel()
	assert.Equal(t, g.Board, current.Board)

	_, err = s.Update(ctx, "alice", g.ID, mines.Update{
		Timer: 3, Board: mines.Board{0, 0, 0, 0}, Status: mines.Won,
	})
	require.NoError(t, err)

	select {
	case snapshot := <-updates:
		assert.Equal(t, mines.Won, snapshot.Status)
		assert.Equal(t, int64(3), snapshot.Timer)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}

	require.NoError(t, s.Delete(ctx, "alice", g.ID))
	_, ok := <-updates
	assert.False(t, ok, "stream must end when the game is deleted")
}

func TestWatchForbidden(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(WithHub(hub.New()))

	g, err := s.Create(ctx, "alice", mines.GameParams{Rows: 2, Cols: 2})
	require.NoError(t, err)
	_, _, _, err = s.Watch(ctx, "bob", g.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

type brokenStore struct {
	repository.GameStore
}

var errBroken = errors.New("connection refused")

func (brokenStore) FetchGame(context.Context, int64) (*mines.Game, error) {
	return nil, errBroken
}

func (brokenStore) CreateGame(context.Context, *mines.Game) (*mines.Game, error) {
	return nil, errBroken
}

func TestStoreErrorsSurface(t *testing.T) {
	ctx := context.Background()
	s := NewService(brokenStore{})

	_, err := s.Get(ctx, "alice", 1)
	assert.ErrorIs(t, err, errBroken)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.Create(ctx, "alice", mines.GameParams{Rows: 1, Cols: 1})
	assert.ErrorIs(t, err, errBroken)
}

func TestAuthorize(t *testing.T) {
	g := &mines.Game{Owner: "alice"}
	got, err := Authorize(g, "alice")
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = Authorize(g, "bob")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = Authorize(g, "")
	assert.ErrorIs(t, err, ErrForbidden)
}
