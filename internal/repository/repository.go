package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/minesweeper-games/internal/mines"
)

var (
	ErrNoGame        = errors.New("game not found")
	ErrNoPlayer      = errors.New("player not found")
	ErrUsernameTaken = errors.New("username taken")
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Queries is the PostgreSQL store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type GameStore interface {
	CreateGame(ctx context.Context, g *mines.Game) (*mines.Game, error)
	FetchGame(ctx context.Context, gameId int64) (*mines.Game, error)
	ListGames(ctx context.Context, owner string, filter GameFilter) ([]*mines.Game, error)
	UpdateGame(ctx context.Context, g *mines.Game) error
	DeleteGame(ctx context.Context, gameId int64) error
	DeleteGames(ctx context.Context, owner string) (int64, error)
}

type PlayerStore interface {
	CreatePlayer(ctx context.Context, params CreatePlayerParams) (*Player, error)
	FetchPlayer(ctx context.Context, username string) (*Player, error)
}

type Store interface {
	GameStore
	PlayerStore
}

var (
	_ Store = (*Queries)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
