package handlers

import (
	"fmt"
	"math"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-games/internal/games"
	"github.com/vancomm/minesweeper-games/internal/mines"
)

const (
	maxSide  = 1000
	maxMines = 10000
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type GameDTO struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	NumRows     int         `json:"numRows"`
	NumCols     int         `json:"numCols"`
	NumMines    int         `json:"numMines"`
	MinesLeft   int         `json:"minesLeft"`
	Board       mines.Board `json:"board"`
	Timer       int64       `json:"timer"`
	Status      string      `json:"status"`
	DateCreated time.Time   `json:"dateCreated"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

func NewGameDTO(g *mines.Game) *GameDTO {
	return &GameDTO{
		ID:          g.ID,
		Username:    g.Owner,
		NumRows:     g.Rows,
		NumCols:     g.Cols,
		NumMines:    g.Mines,
		MinesLeft:   g.MinesLeft,
		Board:       g.Board,
		Timer:       g.Timer,
		Status:      string(g.Status),
		DateCreated: g.DateCreated,
		LastUpdated: g.LastUpdated,
	}
}

func NewGameDTOs(gs []*mines.Game) []*GameDTO {
	dtos := make([]*GameDTO, len(gs))
	for i, g := range gs {
		dtos[i] = NewGameDTO(g)
	}
	return dtos
}

type CreateGameDTO struct {
	NumRows  *int `json:"numRows"`
	NumCols  *int `json:"numCols"`
	NumMines *int `json:"numMines"`
}

func checkRange(field string, v *int, lo, hi int) error {
	if v == nil {
		return invalid(field, "required")
	}
	if *v < lo || *v > hi {
		return invalid(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return nil
}

func (dto CreateGameDTO) Params() (mines.GameParams, error) {
	if err := checkRange("numRows", dto.NumRows, 1, maxSide); err != nil {
		return mines.GameParams{}, err
	}
	if err := checkRange("numCols", dto.NumCols, 1, maxSide); err != nil {
		return mines.GameParams{}, err
	}
	if err := checkRange("numMines", dto.NumMines, 0, maxMines); err != nil {
		return mines.GameParams{}, err
	}
	params := mines.GameParams{
		Rows:  *dto.NumRows,
		Cols:  *dto.NumCols,
		Mines: *dto.NumMines,
	}
	return params, nil
}

// UpdateGameDTO must carry every field. The board is checked cell by cell
// but not against the game it is applied to.
type UpdateGameDTO struct {
	Timer     *int64      `json:"timer"`
	MinesLeft *int        `json:"minesLeft"`
	Board     mines.Board `json:"board"`
	Status    *string     `json:"status"`
}

func (dto UpdateGameDTO) Update() (mines.Update, error) {
	switch {
	case dto.Timer == nil:
		return mines.Update{}, invalid("timer", "required")
	case *dto.Timer < 0:
		return mines.Update{}, invalid("timer", "must not be negative")
	case dto.MinesLeft == nil:
		return mines.Update{}, invalid("minesLeft", "required")
	case *dto.MinesLeft < math.MinInt32 || *dto.MinesLeft > math.MaxInt32:
		return mines.Update{}, invalid("minesLeft", "out of range")
	case dto.Board == nil:
		return mines.Update{}, invalid("board", "required")
	case dto.Status == nil:
		return mines.Update{}, invalid("status", "required")
	}
	if err := dto.Board.Validate(); err != nil {
		return mines.Update{}, invalid("board", err.Error())
	}
	status, err := mines.ParseStatus(*dto.Status)
	if err != nil {
		return mines.Update{}, invalid("status", err.Error())
	}
	u := mines.Update{
		Timer:     *dto.Timer,
		MinesLeft: *dto.MinesLeft,
		Board:     dto.Board,
		Status:    status,
	}
	return u, nil
}

type ListGamesQuery struct {
	Status string `schema:"status"`
}

func ParseListGamesQuery(src map[string][]string) (games.Filter, error) {
	var query ListGamesQuery
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&query, src); err != nil {
		return games.Filter{}, invalid("query", err.Error())
	}
	if query.Status == "" {
		return games.Filter{}, nil
	}
	status, err := mines.ParseStatus(query.Status)
	if err != nil {
		return games.Filter{}, invalid("status", err.Error())
	}
	return games.Filter{Status: &status}, nil
}

type CredentialsDTO struct {
	Username string `schema:"username,required"`
	Password string `schema:"password,required"`
}

var errBadCredentials = invalid(
	"credentials", "request must contain url-encoded username and password",
)

func ParseCredentialsDTO(src map[string][]string) (CredentialsDTO, error) {
	var dto CredentialsDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	if err := dec.Decode(&dto, src); err != nil {
		return dto, errBadCredentials
	}
	if dto.Username == "" || dto.Password == "" {
		return dto, errBadCredentials
	}
	if len(dto.Password) > 72 {
		return dto, invalid("password", "too long")
	}
	return dto, nil
}
