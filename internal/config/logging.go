package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Development switches on colored debug logs. Empty, "0" and "false" leave
// it off.
func Development() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEVELOPMENT"))) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}

// LogLevel reads LOG_LEVEL (debug, info, warn, error). Without it the level
// is debug in development and info otherwise.
func LogLevel() (slog.Level, error) {
	level := slog.LevelInfo
	if Development() {
		level = slog.LevelDebug
	}
	if s, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return level, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return level, nil
}

// LogFile is the optional path of a rotated log file.
func LogFile() string {
	return os.Getenv("LOG_FILE")
}
