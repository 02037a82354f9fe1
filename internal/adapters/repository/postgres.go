package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/puzzlenode/internal/domain/model"
)

const connectTimeout = 5 * time.Second

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	submissionColumns = `SELECT id, user_id, puzzle_id, correct, created_at FROM submissions`

	userColumns = `SELECT id, COALESCE(name, ''), COALESCE(nickname, ''), COALESCE(email, ''), admin, draft_access FROM users`

	eligibleClause = ` WHERE admin = FALSE AND draft_access = FALSE`

	firstCorrectSQL = submissionColumns +
		` WHERE user_id = $1 AND puzzle_id = $2 AND correct = TRUE ORDER BY created_at, id LIMIT 1`

	// leaderboardSQL fuses aggregation and ranking: per-user solved count and
	// latest correct submission, inner joined with eligible users.
	leaderboardSQL = `
		SELECT u.id, COALESCE(u.name, ''), COALESCE(u.nickname, ''), COALESCE(u.email, ''),
		       u.admin, u.draft_access, q.solved, q.latest_solution
		FROM users u
		INNER JOIN (
			SELECT user_id, MAX(created_at) AS latest_solution, COUNT(*) AS solved
			FROM submissions
			WHERE correct = TRUE
			GROUP BY user_id
		) q ON q.user_id = u.id
		WHERE u.admin = FALSE AND u.draft_access = FALSE
		ORDER BY q.solved DESC, q.latest_solution ASC, u.id ASC
		LIMIT $1`
)

// PostgresStore reads users and submissions from PostgreSQL.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore wraps an existing pool or any compatible Querier.
func NewPostgresStore(db Querier) (*PostgresStore, error) {
	if db == nil {
		return nil, ErrNilPool
	}
	return &PostgresStore{db: db}, nil
}

// ConnectPostgres opens a pool for dsn and verifies it with a ping.
// maxConns <= 0 keeps the pgx default.
func ConnectPostgres(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

// Submissions returns submissions matching f ordered by id.
func (s *PostgresStore) Submissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, error) {
	query := submissionColumns
	if f.CorrectOnly {
		query += ` WHERE correct = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.PuzzleID, &sub.Correct, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// Users returns users matching f ordered by id.
func (s *PostgresStore) Users(ctx context.Context, f UserFilter) ([]model.User, error) {
	query := userColumns
	if f.EligibleOnly {
		query += eligibleClause
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Nickname, &u.Email, &u.Admin, &u.DraftAccess); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// FirstCorrectSubmission returns the earliest correct submission of userID
// for puzzleID, or ErrNotFound.
func (s *PostgresStore) FirstCorrectSubmission(ctx context.Context, userID, puzzleID int64) (model.Submission, error) {
	var sub model.Submission
	err := s.db.QueryRow(ctx, firstCorrectSQL, userID, puzzleID).
		Scan(&sub.ID, &sub.UserID, &sub.PuzzleID, &sub.Correct, &sub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Submission{}, ErrNotFound
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("query first correct submission: %w", err)
	}
	return sub, nil
}

// Leaderboard runs the fused ranking query.
func (s *PostgresStore) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		return []model.LeaderboardEntry{}, nil
	}

	rows, err := s.db.Query(ctx, leaderboardSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var (
			e      model.LeaderboardEntry
			solved int64
		)
		if err := rows.Scan(
			&e.User.ID, &e.User.Name, &e.User.Nickname, &e.User.Email,
			&e.User.Admin, &e.User.DraftAccess, &solved, &e.LatestSolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.SolvedCount = int(solved)
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}
