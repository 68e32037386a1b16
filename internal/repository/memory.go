package repository

import (
	"context"
	"sync"
	"time"

	"github.com/vancomm/minesweeper-games/internal/mines"
)

// Memory keeps everything in process. Games handed in and out are copies.
type Memory struct {
	mu           sync.RWMutex
	games        map[int64]*mines.Game
	players      map[string]*Player
	nextGameId   int64
	nextPlayerId int64
}

func NewMemory() *Memory {
	return &Memory{
		games:   make(map[int64]*mines.Game),
		players: make(map[string]*Player),
	}
}

func (m *Memory) CreateGame(_ context.Context, g *mines.Game) (*mines.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextGameId++
	stored := g.Clone()
	stored.ID = m.nextGameId
	m.games[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *Memory) FetchGame(_ context.Context, gameId int64) (*mines.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[gameId]
	if !ok {
		return nil, ErrNoGame
	}
	return g.Clone(), nil
}

func (m *Memory) ListGames(
	_ context.Context, owner string, filter GameFilter,
) ([]*mines.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := make([]*mines.Game, 0)
	for id := range m.nextGameId {
		g, ok := m.games[id+1]
		if ok && g.Owner == owner && filter.Matches(g) {
			games = append(games, g.Clone())
		}
	}
	return games, nil
}

func (m *Memory) UpdateGame(_ context.Context, g *mines.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.games[g.ID]
	if !ok {
		return ErrNoGame
	}
	stored.Timer = g.Timer
	stored.MinesLeft = g.MinesLeft
	stored.Board = g.Board.Clone()
	stored.Status = g.Status
	stored.LastUpdated = g.LastUpdated
	return nil
}

func (m *Memory) DeleteGame(_ context.Context, gameId int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[gameId]; !ok {
		return ErrNoGame
	}
	delete(m.games, gameId)
	return nil
}

func (m *Memory) DeleteGames(_ context.Context, owner string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, g := range m.games {
		if g.Owner == owner {
			delete(m.games, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) CreatePlayer(_ context.Context, params CreatePlayerParams) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.players[params.Username]; ok {
		return nil, ErrUsernameTaken
	}
	m.nextPlayerId++
	now := time.Now().UTC()
	p := &Player{
		PlayerId:     m.nextPlayerId,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.players[p.Username] = p
	created := *p
	return &created, nil
}

func (m *Memory) FetchPlayer(_ context.Context, username string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[username]
	if !ok {
		return nil, ErrNoPlayer
	}
	found := *p
	return &found, nil
}
