package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/vancomm/minesweeper-games/internal/mines"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS player (
	player_id		INTEGER	PRIMARY KEY AUTOINCREMENT,
	username		TEXT	UNIQUE NOT NULL,
	password_hash	BLOB	NOT NULL,
	created_at		INTEGER	NOT NULL,
	updated_at		INTEGER	NOT NULL
);

CREATE TABLE IF NOT EXISTS game (
	game_id			INTEGER	PRIMARY KEY AUTOINCREMENT,
	username		TEXT	NOT NULL,
	num_rows		INTEGER	NOT NULL,
	num_cols		INTEGER	NOT NULL,
	num_mines		INTEGER	NOT NULL,
	mines_left		INTEGER	NOT NULL,
	board			BLOB	NOT NULL,
	timer			INTEGER	NOT NULL DEFAULT 0,
	status			TEXT	NOT NULL,
	date_created	INTEGER	NOT NULL,
	last_updated	INTEGER	NOT NULL
);

CREATE INDEX IF NOT EXISTS game_username_idx ON game (username);`

// SQLite is a single-file store for development and tests. Boards are kept as
// gob blobs and timestamps as unix nanoseconds.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func encodeBoard(b mines.Board) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeBoard(data []byte) (mines.Board, error) {
	var b mines.Board
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, err
	}
	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*mines.Game, error) {
	var (
		g                        mines.Game
		board                    []byte
		status                   string
		dateCreated, lastUpdated int64
	)
	err := row.Scan(
		&g.ID, &g.Owner, &g.Rows, &g.Cols, &g.Mines, &g.MinesLeft,
		&board, &g.Timer, &status, &dateCreated, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}
	if g.Board, err = decodeBoard(board); err != nil {
		return nil, fmt.Errorf("invalid board of game %d: %w", g.ID, err)
	}
	g.Status = mines.Status(status)
	g.DateCreated = time.Unix(0, dateCreated).UTC()
	g.LastUpdated = time.Unix(0, lastUpdated).UTC()
	return &g, nil
}

func (s *SQLite) CreateGame(ctx context.Context, g *mines.Game) (*mines.Game, error) {
	board, err := encodeBoard(g.Board)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
INSERT INTO game (
	username, num_rows, num_cols, num_mines, mines_left,
	board, timer, status, date_created, last_updated
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		g.Owner, g.Rows, g.Cols, g.Mines, g.MinesLeft,
		board, g.Timer, string(g.Status),
		g.DateCreated.UnixNano(), g.LastUpdated.UnixNano(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created := g.Clone()
	created.ID = id
	return created, nil
}

func (s *SQLite) FetchGame(ctx context.Context, gameId int64) (*mines.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM game WHERE game_id = ?;`, gameId)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoGame
	}
	return g, err
}

func (s *SQLite) ListGames(
	ctx context.Context, owner string, filter GameFilter,
) ([]*mines.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM game WHERE username = ?`
	args := []any{owner}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY game_id;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*mines.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLite) UpdateGame(ctx context.Context, g *mines.Game) error {
	board, err := encodeBoard(g.Board)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
UPDATE game
SET timer = ?, mines_left = ?, board = ?, status = ?, last_updated = ?
WHERE game_id = ?;`,
		g.Timer, g.MinesLeft, board, string(g.Status),
		g.LastUpdated.UnixNano(), g.ID,
	)
	return affectedOne(res, err)
}

func (s *SQLite) DeleteGame(ctx context.Context, gameId int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM game WHERE game_id = ?;`, gameId)
	return affectedOne(res, err)
}

func (s *SQLite) DeleteGames(ctx context.Context, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM game WHERE username = ?;`, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoGame
	}
	return nil
}

func (s *SQLite) CreatePlayer(ctx context.Context, params CreatePlayerParams) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO player (username, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?);`,
		params.Username, params.PasswordHash, now.UnixNano(), now.UnixNano(),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	player := &Player{
		PlayerId:     id,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return player, nil
}

func (s *SQLite) FetchPlayer(ctx context.Context, username string) (*Player, error) {
	var (
		p                    Player
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT player_id, username, password_hash, created_at, updated_at
FROM player
WHERE username = ?;`, username).Scan(
		&p.PlayerId, &p.Username, &p.PasswordHash, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPlayer
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	p.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &p, nil
}
