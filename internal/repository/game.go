package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vancomm/minesweeper-games/internal/mines"
)

type GameFilter struct {
	Status *mines.Status
}

func (f GameFilter) WhereClause(owner string) (string, pgx.NamedArgs) {
	clauses := []string{"username = @username"}
	args := pgx.NamedArgs{"username": owner}
	if f.Status != nil {
		clauses = append(clauses, "status = @status")
		args["status"] = string(*f.Status)
	}
	return strings.Join(clauses, " AND "), args
}

// Matches reports whether g passes the filter. Used by the stores that can't
// push the filter down to SQL.
func (f GameFilter) Matches(g *mines.Game) bool {
	return f.Status == nil || g.Status == *f.Status
}

const gameColumns = `game_id, username, num_rows, num_cols, num_mines,
	mines_left, board, timer, status, date_created, last_updated`

type gameRow struct {
	GameID      int64     `db:"game_id"`
	Username    string    `db:"username"`
	NumRows     int32     `db:"num_rows"`
	NumCols     int32     `db:"num_cols"`
	NumMines    int32     `db:"num_mines"`
	MinesLeft   int32     `db:"mines_left"`
	Board       []int32   `db:"board"`
	Timer       int64     `db:"timer"`
	Status      string    `db:"status"`
	DateCreated time.Time `db:"date_created"`
	LastUpdated time.Time `db:"last_updated"`
}

func (r gameRow) game() *mines.Game {
	board := make(mines.Board, len(r.Board))
	for i, c := range r.Board {
		board[i] = mines.Cell(c)
	}
	return &mines.Game{
		ID:          r.GameID,
		Owner:       r.Username,
		Rows:        int(r.NumRows),
		Cols:        int(r.NumCols),
		Mines:       int(r.NumMines),
		MinesLeft:   int(r.MinesLeft),
		Board:       board,
		Timer:       r.Timer,
		Status:      mines.Status(r.Status),
		DateCreated: r.DateCreated,
		LastUpdated: r.LastUpdated,
	}
}

func boardArg(b mines.Board) []int32 {
	arg := make([]int32, len(b))
	for i, c := range b {
		arg[i] = int32(c)
	}
	return arg
}

func (q Queries) CreateGame(ctx context.Context, g *mines.Game) (*mines.Game, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game (
			username, num_rows, num_cols, num_mines, mines_left,
			board, timer, status, date_created, last_updated
		)
		VALUES (
			@username, @num_rows, @num_cols, @num_mines, @mines_left,
			@board, @timer, @status, @date_created, @last_updated
		)
		RETURNING `+gameColumns,
		pgx.NamedArgs{
			"username":     g.Owner,
			"num_rows":     g.Rows,
			"num_cols":     g.Cols,
			"num_mines":    g.Mines,
			"mines_left":   g.MinesLeft,
			"board":        boardArg(g.Board),
			"timer":        g.Timer,
			"status":       string(g.Status),
			"date_created": g.DateCreated,
			"last_updated": g.LastUpdated,
		},
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[gameRow])
	if err != nil {
		return nil, err
	}
	return row.game(), nil
}

func (q Queries) FetchGame(ctx context.Context, gameId int64) (*mines.Game, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT "+gameColumns+" FROM game WHERE game_id = $1",
		gameId,
	)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[gameRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoGame
	}
	if err != nil {
		return nil, err
	}
	return row.game(), nil
}

func (q Queries) ListGames(
	ctx context.Context, owner string, filter GameFilter,
) ([]*mines.Game, error) {
	where, args := filter.WhereClause(owner)
	rows, err := q.db.Query(
		ctx,
		"SELECT "+gameColumns+" FROM game WHERE "+where+" ORDER BY game_id",
		args,
	)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[gameRow])
	if err != nil {
		return nil, err
	}
	games := make([]*mines.Game, len(collected))
	for i, row := range collected {
		games[i] = row.game()
	}
	return games, nil
}

func (q Queries) UpdateGame(ctx context.Context, g *mines.Game) error {
	tag, err := q.db.Exec(
		ctx,
		`UPDATE game
		SET timer = @timer
			, mines_left = @mines_left
			, board = @board
			, status = @status
			, last_updated = @last_updated
		WHERE game_id = @game_id`,
		pgx.NamedArgs{
			"game_id":      g.ID,
			"timer":        g.Timer,
			"mines_left":   g.MinesLeft,
			"board":        boardArg(g.Board),
			"status":       string(g.Status),
			"last_updated": g.LastUpdated,
		},
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoGame
	}
	return nil
}

func (q Queries) DeleteGame(ctx context.Context, gameId int64) error {
	tag, err := q.db.Exec(ctx, "DELETE FROM game WHERE game_id = $1", gameId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoGame
	}
	return nil
}

func (q Queries) DeleteGames(ctx context.Context, owner string) (int64, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM game WHERE username = $1", owner)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
