package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-games/internal/config"
	"github.com/vancomm/minesweeper-games/internal/database"
	"github.com/vancomm/minesweeper-games/internal/games"
	"github.com/vancomm/minesweeper-games/internal/hub"
	"github.com/vancomm/minesweeper-games/internal/middleware"
	"github.com/vancomm/minesweeper-games/internal/repository"
)

type App struct {
	logger  *slog.Logger
	router  *mux.Router
	store   repository.Store
	cookies *config.Cookies
	ws      *config.WebSocket
	origins config.Origins
	hub     *hub.Hub
	games   *games.Service
}

func New(
	logger *slog.Logger,
	store repository.Store,
	cookies *config.Cookies,
	origins config.Origins,
	opts ...games.Option,
) *App {
	h := hub.New()
	opts = append([]games.Option{games.WithLogger(logger), games.WithHub(h)}, opts...)

	app := &App{
		logger:  logger,
		router:  mux.NewRouter(),
		store:   store,
		cookies: cookies,
		ws:      config.NewWebSocket(origins),
		origins: origins,
		hub:     h,
		games:   games.NewService(store, opts...),
	}
	app.loadRoutes()

	return app
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(a.origins),
		middleware.Recover(a.logger),
		middleware.Logging(a.logger),
	)
}

// Start serves on addr until ctx is done, then shuts the server down.
func (a *App) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:        addr,
		Handler:     a.Handler(),
		ReadTimeout: time.Second * 15,
		IdleTimeout: time.Second * 60,
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}

// OpenStore picks the game and player store named by DATABASE_DRIVER. The
// returned func releases it.
func OpenStore(ctx context.Context, logger *slog.Logger) (repository.Store, func(), error) {
	driver, err := config.DatabaseDriver()
	if err != nil {
		return nil, nil, err
	}
	logger.Info("opening store", slog.String("driver", string(driver)))

	switch driver {
	case config.Memory:
		return repository.NewMemory(), func() {}, nil
	case config.SQLite:
		s, err := repository.OpenSQLite(config.SqlitePath())
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		pool, migrator, err := database.ConnectAndMigrate(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to db: %w", err)
		}
		version, dirty, err := migrator.Version()
		if err == nil {
			logger.Info("database migrated", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		}
		closeAll := func() {
			migrator.Close()
			pool.Close()
		}
		return repository.New(pool), closeAll, nil
	}
}
