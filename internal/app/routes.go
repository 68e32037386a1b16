package app

import (
	"net/http"

	"github.com/vancomm/minesweeper-games/internal/handlers"
	"github.com/vancomm/minesweeper-games/internal/middleware"
)

func (a *App) loadRoutes() {
	auth := handlers.NewAuth(a.logger, a.store, a.cookies)
	game := handlers.NewGameHandler(a.logger, a.games, a.ws)

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth()(h)
	}

	a.router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}).Methods(http.MethodGet)
	a.router.HandleFunc("/status", auth.Status).Methods(http.MethodGet)
	a.router.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	a.router.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
	a.router.HandleFunc("/logout", auth.Logout).Methods(http.MethodPost)

	a.router.Handle("/game", authed(game.Create)).Methods(http.MethodPost)
	a.router.Handle("/game", authed(game.List)).Methods(http.MethodGet)
	a.router.Handle("/game", authed(game.DeleteAll)).Methods(http.MethodDelete)
	a.router.Handle("/game/{id}", authed(game.Fetch)).Methods(http.MethodGet)
	a.router.Handle("/game/{id}", authed(game.Update)).Methods(http.MethodPut)
	a.router.Handle("/game/{id}", authed(game.Delete)).Methods(http.MethodDelete)
	a.router.Handle("/game/{id}/connect", authed(game.Connect)).Methods(http.MethodGet)
}
