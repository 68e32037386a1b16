package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/minesweeper-games/internal/games"
	"github.com/vancomm/minesweeper-games/internal/mines"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, logger *slog.Logger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error(
			"unable to send response",
			slog.Any("response", v),
			slog.Any("error", err),
		)
	}
}

func sendStatusJSON(w http.ResponseWriter, logger *slog.Logger, code int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("unable to marshal response", slog.Any("error", err))
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(payload)
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}

func wrapMessage(m string) map[string]string {
	return map[string]string{
		"message": m,
	}
}

var errInternal = errors.New("internal server error")

// sendError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func sendError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *ValidationError
	switch {
	case errors.Is(err, games.ErrNotFound):
		sendStatusJSON(w, logger, http.StatusNotFound, wrapError(err))
	case errors.Is(err, games.ErrForbidden):
		sendStatusJSON(w, logger, http.StatusForbidden, wrapError(err))
	case errors.As(err, &validationErr), errors.Is(err, mines.ErrInvalidParams):
		sendStatusJSON(w, logger, http.StatusBadRequest, wrapError(err))
	default:
		logger.Error("request failed", slog.Any("error", err))
		sendStatusJSON(w, logger, http.StatusInternalServerError, wrapError(errInternal))
	}
}
