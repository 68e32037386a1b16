package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minesweeper-games/internal/config"
	"github.com/vancomm/minesweeper-games/internal/middleware"
	"github.com/vancomm/minesweeper-games/internal/repository"
)

type Auth struct {
	logger  *slog.Logger
	repo    repository.PlayerStore
	cookies *config.Cookies
	jwt     *config.JWT
	now     func() time.Time
}

func NewAuth(
	logger *slog.Logger,
	repo repository.PlayerStore,
	cookies *config.Cookies,
) *Auth {
	auth := &Auth{
		logger:  logger,
		repo:    repo,
		cookies: cookies,
		jwt:     cookies.JWT(),
		now:     time.Now,
	}

	return auth
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

type TokenResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Player    PlayerInfo `json:"player"`
}

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrWrongCredentials   = errors.New("wrong username or password")
	ErrPasswordHashFailed = errors.New("unable to hash password")
)

// issue signs a fresh token for claims and sets the auth cookies.
func (a Auth) issue(w http.ResponseWriter, claims *config.PlayerClaims) (*TokenResponse, error) {
	token, err := a.jwt.SignPlayer(claims, a.now())
	if err != nil {
		return nil, err
	}
	if err := a.cookies.Refresh(w, token); err != nil {
		return nil, err
	}
	resp := &TokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Player:    PlayerInfo{claims.PlayerId, claims.Username},
	}
	return resp, nil
}

func (a Auth) Status(w http.ResponseWriter, r *http.Request) {
	var status *Status
	claims, ok := middleware.PlayerClaims(r.Context())
	if ok {
		status = &Status{
			LoggedIn: true,
			Player:   &PlayerInfo{claims.PlayerId, claims.Username},
		}
		a.logger.Debug("refresh cookies")
		refreshed := config.NewPlayerClaims(claims.PlayerId, claims.Username)
		if _, err := a.issue(w, refreshed); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			a.logger.Error("unable to tokenize checked claim", "error", err)
			return
		}
	} else {
		status = &Status{LoggedIn: false, Player: nil}
		a.cookies.Clear(w)
	}

	sendJSONOrLog(w, a.logger, status)
}

func (a Auth) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendStatusJSON(w, a.logger, http.StatusBadRequest, wrapError(errBadCredentials))
		return
	}

	dto, err := ParseCredentialsDTO(r.Form)
	if err != nil {
		sendError(w, a.logger, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		a.logger.Error("unable to hash password", "error", err)
		sendStatusJSON(w, a.logger, http.StatusInternalServerError, wrapError(ErrPasswordHashFailed))
		return
	}

	player, err := a.repo.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     dto.Username,
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrUsernameTaken) {
		sendStatusJSON(w, a.logger, http.StatusConflict, wrapError(ErrUsernameTaken))
		return
	}
	if err != nil {
		sendError(w, a.logger, err)
		return
	}

	resp, err := a.issue(w, config.NewPlayerClaims(player.PlayerId, player.Username))
	if err != nil {
		sendError(w, a.logger, err)
		return
	}

	a.logger.Info("registered player", slog.String("username", player.Username))
	sendStatusJSON(w, a.logger, http.StatusCreated, resp)
}

func (a Auth) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendStatusJSON(w, a.logger, http.StatusBadRequest, wrapError(errBadCredentials))
		return
	}

	dto, err := ParseCredentialsDTO(r.Form)
	if err != nil {
		sendError(w, a.logger, err)
		return
	}

	player, err := a.repo.FetchPlayer(r.Context(), dto.Username)
	if errors.Is(err, repository.ErrNoPlayer) {
		sendStatusJSON(w, a.logger, http.StatusUnauthorized, wrapError(ErrWrongCredentials))
		return
	}
	if err != nil {
		sendError(w, a.logger, err)
		return
	}

	err = bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(dto.Password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		sendStatusJSON(w, a.logger, http.StatusUnauthorized, wrapError(ErrWrongCredentials))
		return
	}
	if err != nil {
		sendError(w, a.logger, err)
		return
	}

	resp, err := a.issue(w, config.NewPlayerClaims(player.PlayerId, player.Username))
	if err != nil {
		sendError(w, a.logger, err)
		return
	}
	sendJSONOrLog(w, a.logger, resp)
}

func (a Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	sendJSONOrLog(w, a.logger, wrapMessage("Logged out"))
}
