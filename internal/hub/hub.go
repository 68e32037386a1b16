// Package hub fans game snapshots out to websocket watchers.
package hub

import (
	"sync"

	"github.com/vancomm/minesweeper-games/internal/mines"
)

const bufferSize = 8

type subscriber struct {
	ch     chan *mines.Game
	closed bool
}

type Hub struct {
	mu   sync.Mutex
	subs map[int64]map[*subscriber]struct{}
}

func New() *Hub {
	return &Hub{subs: make(map[int64]map[*subscriber]struct{})}
}

// Subscribe registers a watcher of gameId. The channel is closed by cancel or
// by Close, whichever happens first.
func (h *Hub) Subscribe(gameId int64) (<-chan *mines.Game, func()) {
	sub := &subscriber{ch: make(chan *mines.Game, bufferSize)}

	h.mu.Lock()
	subs, ok := h.subs[gameId]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.subs[gameId] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subs[gameId]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subs, gameId)
			}
		}
		h.closeSub(sub)
	}
	return sub.ch, cancel
}

func (h *Hub) closeSub(sub *subscriber) {
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}

// Publish never blocks; a subscriber with a full buffer misses the snapshot.
func (h *Hub) Publish(g *mines.Game) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[g.ID] {
		select {
		case sub.ch <- g.Clone():
		default:
		}
	}
}

func (h *Hub) Close(gameId int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[gameId] {
		h.closeSub(sub)
	}
	delete(h.subs, gameId)
}

func (h *Hub) Watchers(gameId int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameId])
}
