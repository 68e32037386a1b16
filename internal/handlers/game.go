package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-games/internal/config"
	"github.com/vancomm/minesweeper-games/internal/games"
	"github.com/vancomm/minesweeper-games/internal/middleware"
)

const maxBodyBytes = 1 << 22

type GameHandler struct {
	logger *slog.Logger
	games  *games.Service
	ws     *config.WebSocket
}

func NewGameHandler(
	logger *slog.Logger,
	service *games.Service,
	ws *config.WebSocket,
) *GameHandler {
	handler := &GameHandler{
		logger: logger,
		games:  service,
		ws:     ws,
	}

	return handler
}

var (
	errNoCaller   = errors.New("unauthorized")
	errBadGameId  = invalid("id", "must be an integer")
	errBadPayload = invalid("body", "malformed JSON")
)

// caller is the username the request was authenticated as.
func caller(r *http.Request) (string, error) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		return "", errNoCaller
	}
	return claims.Username, nil
}

func gameId(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, errBadGameId
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadPayload
	}
	return nil
}

// target resolves the caller and the game id of single-game routes.
func (h GameHandler) target(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	username, err := caller(r)
	if err != nil {
		sendStatusJSON(w, h.logger, http.StatusUnauthorized, wrapError(err))
		return "", 0, false
	}
	id, err := gameId(r)
	if err != nil {
		sendError(w, h.logger, err)
		return "", 0, false
	}
	return username, id, true
}

func (h GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, err := caller(r)
	if err != nil {
		sendStatusJSON(w, h.logger, http.StatusUnauthorized, wrapError(err))
		return
	}

	var dto CreateGameDTO
	if err := decodeBody(w, r, &dto); err != nil {
		sendError(w, h.logger, err)
		return
	}
	params, err := dto.Params()
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	game, err := h.games.Create(r.Context(), username, params)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/game/%d", game.ID))
	sendStatusJSON(w, h.logger, http.StatusCreated, NewGameDTO(game))
}

func (h GameHandler) List(w http.ResponseWriter, r *http.Request) {
	username, err := caller(r)
	if err != nil {
		sendStatusJSON(w, h.logger, http.StatusUnauthorized, wrapError(err))
		return
	}

	filter, err := ParseListGamesQuery(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	list, err := h.games.List(r.Context(), username, filter)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	sendJSONOrLog(w, h.logger, NewGameDTOs(list))
}

func (h GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.target(w, r)
	if !ok {
		return
	}

	game, err := h.games.Get(r.Context(), username, id)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	sendJSONOrLog(w, h.logger, NewGameDTO(game))
}

func (h GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var dto UpdateGameDTO
	if err := decodeBody(w, r, &dto); err != nil {
		sendError(w, h.logger, err)
		return
	}
	update, err := dto.Update()
	if err != nil {
		sendError(w, h.logger, err)
		return
	}

	game, err := h.games.Update(r.Context(), username, id, update)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	sendJSONOrLog(w, h.logger, NewGameDTO(game))
}

func (h GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.games.Delete(r.Context(), username, id); err != nil {
		sendError(w, h.logger, err)
		return
	}
	sendJSONOrLog(w, h.logger, wrapMessage("Game deleted"))
}

func (h GameHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	username, err := caller(r)
	if err != nil {
		sendStatusJSON(w, h.logger, http.StatusUnauthorized, wrapError(err))
		return
	}

	n, err := h.games.DeleteAll(r.Context(), username)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	h.logger.Debug("deleted all games", slog.String("username", username), slog.Int64("count", n))
	sendJSONOrLog(w, h.logger, wrapMessage("All Games deleted"))
}

var errGameDeleted = errors.New("game deleted")

// Connect streams the game to a websocket: the current state first, then
// every accepted update until the game is deleted or the client leaves.
func (h GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	username, id, ok := h.target(w, r)
	if !ok {
		return
	}

	current, updates, cancel, err := h.games.Watch(r.Context(), username, id)
	if err != nil {
		sendError(w, h.logger, err)
		return
	}
	defer cancel()

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("unable to upgrade connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		// unblocks the reader
		defer conn.Close()
		if err := conn.WriteJSON(NewGameDTO(current)); err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case game, ok := <-updates:
				if !ok {
					msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, errGameDeleted.Error())
					if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
						h.logger.Debug("unable to send close message", slog.Int64("id", id), slog.Any("error", err))
					}
					return errGameDeleted
				}
				if err := conn.WriteJSON(NewGameDTO(game)); err != nil {
					return err
				}
			}
		}
	})

	err = g.Wait()
	h.logger.Debug("websocket closed", slog.Int64("id", id), slog.Any("reason", err))
}
