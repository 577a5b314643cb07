package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/person-api/internal/config"
	"github.com/wichananm65/person-api/internal/database"
	"github.com/wichananm65/person-api/internal/logger"
	"github.com/wichananm65/person-api/internal/metrics"
	"github.com/wichananm65/person-api/internal/person"
)

//go:generate swag init --dir ../../ --generalInfo cmd/api/main.go --output ../../docs --outputTypes go

// @title        person-api
// @version      1.0
// @description  CRUD service for people with unique email addresses.
// @BasePath     /
func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "person-api: %v\n", err)
		os.Exit(1)
	}
}

// run wires dependencies and serves until SIGINT or SIGTERM.
func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	recorder := metrics.New()
	service := person.NewService(repo, recorder, log)
	app := newApp(cfg, log, recorder, person.NewHandler(service))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("store", cfg.Store).Msg("starting server")
		return app.Listen(cfg.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return app.ShutdownWithContext(shutdownCtx)
	})

	return g.Wait()
}

func openRepository(ctx context.Context, cfg config.Config, log zerolog.Logger) (person.Repository, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return person.NewInMemoryRepository(nil), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("closing database")
		}
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		closeDB()
		return nil, nil, err
	}

	repo, err := newSQLRepository(cfg.Store, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return repo, closeDB, nil
}

func newSQLRepository(store string, db *sql.DB) (person.Repository, error) {
	switch store {
	case config.StorePostgres:
		return person.NewPostgresRepository(db), nil
	case config.StoreGorm:
		gdb, err := database.OpenGorm(db)
		if err != nil {
			return nil, err
		}
		return person.NewGormRepository(gdb), nil
	default:
		return nil, errors.NotValidf("store %q", store)
	}
}
