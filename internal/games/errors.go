package games

import (
	"errors"

	"github.com/vancomm/minesweeper-games/internal/mines"
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrForbidden = errors.New("game belongs to another player")
	ErrNoHub     = errors.New("live updates are disabled")
)

// Authorize lets only the owner of g through.
func Authorize(g *mines.Game, caller string) (*mines.Game, error) {
	if g.Owner != caller {
		return nil, ErrForbidden
	}
	return g, nil
}
