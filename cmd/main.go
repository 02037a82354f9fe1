package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	repository "github.com/okian/puzzlenode/internal/adapters/repository"
	service "github.com/okian/puzzlenode/internal/app"
	"github.com/okian/puzzlenode/internal/domain/model"
	"github.com/okian/puzzlenode/internal/config"
	"github.com/okian/puzzlenode/pkg/logger"
	"github.com/okian/puzzlenode/pkg/metrics"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	m := metrics.Init(metrics.WithNamespace(cfg.MetricsNamespace))

	if err := run(ctx, cfg, loggerInstance, m, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		loggerInstance.Error(ctx, "leaderboard failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run parses args, builds the store and service from cfg and writes one
// report to out.
func run(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("puzzlenode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.Int("limit", cfg.DefaultLimit, "number of leaderboard entries")
	userID := fs.Int64("user", 0, "user id whose position is reported")
	fixture := fs.String("fixture", "", "JSON file seeding the memory store")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, *fixture)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.New(store,
		service.WithDefaultLimit(cfg.DefaultLimit),
		service.WithFusedQuery(cfg.FusedQuery),
		service.WithQueryTimeout(cfg.QueryTimeout()),
		service.WithLogger(log.Named("leaderboard")),
		service.WithMetrics(m),
	)

	entries, err := svc.Leaderboard(ctx, *limit)
	if err != nil {
		return fmt.Errorf("compute leaderboard: %w", err)
	}
	rep := newReport(entries)

	if *userID != 0 {
		user, err := lookupUser(ctx, store, *userID)
		if err != nil {
			return err
		}
		pos, ok, err := svc.LeaderboardPosition(ctx, user, *limit)
		if err != nil {
			return fmt.Errorf("compute position: %w", err)
		}
		if ok {
			rep.Position = &pos
		}
	}

	return writeReport(out, rep)
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, fixture string) (repository.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		store := repository.NewMemoryStore()
		if fixture != "" {
			if err := seedFromFile(ctx, store, fixture); err != nil {
				return nil, nil, err
			}
		}
		return store, func() {}, nil
	case config.StorePostgres:
		pool, err := repository.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// lookupUser finds the user by id. Unknown ids come back as a bare
// User with that id, which is never ranked.
func lookupUser(ctx context.Context, store repository.Store, id int64) (model.User, error) {
	users, err := store.Users(ctx, repository.UserFilter{})
	if err != nil {
		return model.User{}, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{ID: id}, nil
}
