// Package repository defines the read contract the leaderboard needs from
// persistence, with in-memory and PostgreSQL implementations.
package repository

import (
	"context"

	"github.com/okian/puzzlenode/internal/domain/model"
)

// SubmissionFilter narrows a submission read.
type SubmissionFilter struct {
	// CorrectOnly restricts the result to correct submissions.
	CorrectOnly bool
}

// UserFilter narrows a user read.
type UserFilter struct {
	// EligibleOnly restricts the result to users eligible for display.
	EligibleOnly bool
}

// Store provides read access to users and submissions.
type Store interface {
	// Submissions returns submissions matching f.
	Submissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, error)

	// Users returns users matching f.
	Users(ctx context.Context, f UserFilter) ([]model.User, error)

	// FirstCorrectSubmission returns the earliest correct submission of a
	// user for a puzzle. Returns ErrNotFound when there is none.
	FirstCorrectSubmission(ctx context.Context, userID, puzzleID int64) (model.Submission, error)
}

// LeaderboardQuerier is implemented by stores that can compute the whole
// leaderboard in one query. Results must match ranking.Leaderboard over the
// same data, limit <= 0 included.
type LeaderboardQuerier interface {
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}
