// Package games guards the game lifecycle: every single-game operation looks
// the game up first and then checks that the caller owns it.
package games

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/vancomm/minesweeper-games/internal/hub"
	"github.com/vancomm/minesweeper-games/internal/mines"
	"github.com/vancomm/minesweeper-games/internal/repository"
)

type Filter = repository.GameFilter

type Service struct {
	logger    *slog.Logger
	store     repository.GameStore
	hub       *hub.Hub
	placement mines.Placement
	newRand   func() *rand.Rand
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithHub(h *hub.Hub) Option {
	return func(s *Service) { s.hub = h }
}

func WithPlacement(p mines.Placement) Option {
	return func(s *Service) { s.placement = p }
}

func WithRand(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repository.GameStore, opts ...Option) *Service {
	s := &Service{
		logger:    slog.Default(),
		store:     store,
		placement: mines.Sampling,
		newRand:   mines.NewRand,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) fetch(ctx context.Context, caller string, gameId int64) (*mines.Game, error) {
	g, err := s.store.FetchGame(ctx, gameId)
	if errors.Is(err, repository.ErrNoGame) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to fetch game %d: %w", gameId, err)
	}
	return Authorize(g, caller)
}

func (s *Service) Create(
	ctx context.Context, caller string, params mines.GameParams,
) (*mines.Game, error) {
	g, err := mines.NewGame(params, caller, s.placement, s.newRand(), s.now())
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateGame(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("unable to save game: %w", err)
	}
	s.logger.Debug(
		"created game",
		slog.Int64("id", created.ID),
		slog.String("owner", caller),
		slog.String("placement", s.placement.String()),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, caller string, gameId int64) (*mines.Game, error) {
	return s.fetch(ctx, caller, gameId)
}

func (s *Service) List(ctx context.Context, caller string, filter Filter) ([]*mines.Game, error) {
	games, err := s.store.ListGames(ctx, caller, filter)
	if err != nil {
		return nil, fmt.Errorf("unable to list games: %w", err)
	}
	return games, nil
}

// Update overwrites the stored state with u. Finished games can still be
// updated and the board is taken as given.
func (s *Service) Update(
	ctx context.Context, caller string, gameId int64, u mines.Update,
) (*mines.Game, error) {
	g, err := s.fetch(ctx, caller, gameId)
	if err != nil {
		return nil, err
	}
	g.Apply(u, s.now())
	err = s.store.UpdateGame(ctx, g)
	if errors.Is(err, repository.ErrNoGame) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to update game %d: %w", gameId, err)
	}
	if s.hub != nil {
		s.hub.Publish(g)
	}
	return g, nil
}

func (s *Service) Delete(ctx context.Context, caller string, gameId int64) error {
	if _, err := s.fetch(ctx, caller, gameId); err != nil {
		return err
	}
	err := s.store.DeleteGame(ctx, gameId)
	if errors.Is(err, repository.ErrNoGame) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("unable to delete game %d: %w", gameId, err)
	}
	if s.hub != nil {
		s.hub.Close(gameId)
	}
	return nil
}

// DeleteAll removes every game of caller and nothing else.
func (s *Service) DeleteAll(ctx context.Context, caller string) (int64, error) {
	var ids []int64
	if s.hub != nil {
		games, err := s.store.ListGames(ctx, caller, Filter{})
		if err != nil {
			return 0, fmt.Errorf("unable to list games: %w", err)
		}
		for _, g := range games {
			ids = append(ids, g.ID)
		}
	}
	n, err := s.store.DeleteGames(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("unable to delete games: %w", err)
	}
	for _, id := range ids {
		s.hub.Close(id)
	}
	s.logger.Debug("deleted games", slog.String("owner", caller), slog.Int64("count", n))
	return n, nil
}

// Watch returns the current state of the game and a stream of the states that
// follow it. The stream ends when cancel is called or the game is deleted.
func (s *Service) Watch(
	ctx context.Context, caller string, gameId int64,
) (*mines.Game, <-chan *mines.Game, func(), error) {
	if s.hub == nil {
		return nil, nil, nil, ErrNoHub
	}
	g, err := s.fetch(ctx, caller, gameId)
	if err != nil {
		return nil, nil, nil, err
	}
	updates, cancel := s.hub.Subscribe(gameId)
	return g, updates, cancel, nil
}
