package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vancomm/minesweeper-games/internal/app"
	"github.com/vancomm/minesweeper-games/internal/config"
	"github.com/vancomm/minesweeper-games/internal/games"
)

func newLogger() *slog.Logger {
	var out io.Writer = os.Stderr
	if path := config.LogFile(); path != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}

	level, err := config.LogLevel()

	var handler slog.Handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	if config.Development() {
		handler = tint.NewHandler(out, &tint.Options{
			Level: level,
		})
	}
	logger := slog.New(handler)
	if err != nil {
		logger.Warn("falling back to default log level", slog.Any("error", err))
	}
	return logger
}

func main() {
	// a missing .env is fine, the environment may be set already
	envErr := godotenv.Load()

	logger := newLogger()
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.Any("error", envErr))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	jwt, err := config.NewJWT()
	if err != nil {
		logger.Error("failed to read jwt config", slog.Any("error", err))
		os.Exit(1)
	}

	cookies, err := config.NewCookies(jwt)
	if err != nil {
		logger.Error("failed to read cookies config", slog.Any("error", err))
		os.Exit(1)
	}

	placement, err := config.Placement()
	if err != nil {
		logger.Error("failed to read board placement", slog.Any("error", err))
		os.Exit(1)
	}

	store, closeStore, err := app.OpenStore(ctx, logger)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	a := app.New(
		logger, store, cookies, config.NewOrigins(), games.WithPlacement(placement),
	)
	if err := a.Start(ctx, config.Port()); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		closeStore()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
