package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
}

// NewWebSocket checks browser origins against the same list as CORS.
// Requests without an Origin header come from non-browser clients and pass.
func NewWebSocket(origins Origins) *WebSocket {
	upgrader := websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins.Allow(origin)
		},
	}

	return &WebSocket{Upgrader: upgrader}
}
