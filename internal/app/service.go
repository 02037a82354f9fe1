// Package service exposes the leaderboard operations over a repository.Store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/puzzlenode/internal/adapters/repository"
	"github.com/okian/puzzlenode/internal/domain/model"
	"github.com/okian/puzzlenode/internal/domain/ranking"
	"github.com/okian/puzzlenode/pkg/logger"
	"github.com/okian/puzzlenode/pkg/metrics"
)

// Execution modes, used as a metrics label.
const (
	modeTwoStage = "two_stage"
	modeFused    = "fused"
)

// Store operations, used as a metrics label.
const (
	opSubmissions  = "submissions"
	opUsers        = "users"
	opLeaderboard  = "leaderboard"
	opFirstCorrect = "first_correct_submission"
)

// Service computes leaderboards. It holds no mutable state; every call reads
// the store afresh.
type Service struct {
	store        repository.Store
	defaultLimit int
	fused        bool
	queryTimeout time.Duration
	logger       logger.Logger
	metrics      *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDefaultLimit sets the limit used by LeaderboardDefault.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithFusedQuery lets the service use a store-side leaderboard query when the
// store implements repository.LeaderboardQuerier.
func WithFusedQuery(enabled bool) Option {
	return func(s *Service) {
		s.fused = enabled
	}
}

// WithQueryTimeout bounds each store read. Zero leaves the caller's context as is.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to the global one.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service reading from store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		defaultLimit: ranking.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("leaderboard")
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	return s
}

// DefaultLimit returns the limit used when the caller does not pick one.
func (s *Service) DefaultLimit() int { return s.defaultLimit }

// LeaderboardDefault returns the leaderboard with the default limit.
func (s *Service) LeaderboardDefault(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return s.Leaderboard(ctx, s.defaultLimit)
}

// Leaderboard returns at most limit ranked entries. limit <= 0 returns an
// empty leaderboard without reading the store. Store errors are returned
// unchanged.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		return []model.LeaderboardEntry{}, nil
	}

	id := uuid.NewString()
	start := time.Now()

	mode := modeTwoStage
	var (
		entries []model.LeaderboardEntry
		err     error
	)
	if q, ok := s.store.(repository.LeaderboardQuerier); ok && s.fused {
		mode = modeFused
		entries, err = s.fusedLeaderboard(ctx, q, limit)
	} else {
		entries, err = s.twoStageLeaderboard(ctx, limit)
	}
	if err != nil {
		s.logger.Error(ctx, "leaderboard computation failed",
			logger.String("computation_id", id),
			logger.String("mode", mode),
			logger.Error(err),
		)
		return nil, err
	}

	took := time.Since(start)
	s.metrics.RecordComputation(mode, float64(took.Microseconds())/1000, len(entries))
	s.logger.Debug(ctx, "leaderboard computed",
		logger.String("computation_id", id),
		logger.String("mode", mode),
		logger.Int("limit", limit),
		logger.Int("entries", len(entries)),
		logger.Duration("took", took),
	)
	return entries, nil
}

func (s *Service) fusedLeaderboard(ctx context.Context, q repository.LeaderboardQuerier, limit int) ([]model.LeaderboardEntry, error) {
	qctx, cancel := s.queryContext(ctx)
	defer cancel()
	entries, err := q.Leaderboard(qctx, limit)
	if err != nil {
		s.metrics.RecordStoreError(opLeaderboard)
		return nil, err
	}
	return entries, nil
}

func (s *Service) twoStageLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	subs, err := s.store.Submissions(qctx, repository.SubmissionFilter{CorrectOnly: true})
	if err != nil {
		s.metrics.RecordStoreError(opSubmissions)
		return nil, err
	}
	users, err := s.store.Users(qctx, repository.UserFilter{EligibleOnly: true})
	if err != nil {
		s.metrics.RecordStoreError(opUsers)
		return nil, err
	}
	return ranking.Rank(users, ranking.Aggregate(subs), limit), nil
}

// LeaderboardPosition returns the user's 1-based position within
// Leaderboard(limit). ok is false when the user is not ranked: ineligible,
// without a correct submission, or outside the window.
func (s *Service) LeaderboardPosition(ctx context.Context, user model.User, limit int) (position int, ok bool, err error) {
	entries, err := s.Leaderboard(ctx, limit)
	if err != nil {
		return 0, false, err
	}
	position, ok = ranking.Position(entries, user.ID)
	s.metrics.RecordPositionLookup(ok)
	return position, ok, nil
}

// DisplayName resolves the user's public name.
func (s *Service) DisplayName(user model.User) string {
	return model.DisplayName(user)
}

// SolutionFor returns the user's first correct submission for a puzzle.
// ok is false when there is none or puzzleID is zero.
func (s *Service) SolutionFor(ctx context.Context, user model.User, puzzleID int64) (sub model.Submission, ok bool, err error) {
	if puzzleID == 0 {
		return model.Submission{}, false, nil
	}
	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	sub, err = s.store.FirstCorrectSubmission(qctx, user.ID, puzzleID)
	switch {
	case err == nil:
		return sub, true, nil
	case errors.Is(err, repository.ErrNotFound):
		return model.Submission{}, false, nil
	default:
		s.metrics.RecordStoreError(opFirstCorrect)
		return model.Submission{}, false, err
	}
}

func (s *Service) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout > 0 {
		return context.WithTimeout(ctx, s.queryTimeout)
	}
	return ctx, func() {}
}
