package config

import (
	"os"

	"github.com/vancomm/minesweeper-games/internal/mines"
)

// Port is the listen address, ":8080" unless APP_PORT says otherwise.
func Port() string {
	if port := os.Getenv("APP_PORT"); port != "" {
		return port
	}
	return ":8080"
}

func Placement() (mines.Placement, error) {
	return mines.ParsePlacement(os.Getenv("BOARD_PLACEMENT"))
}
