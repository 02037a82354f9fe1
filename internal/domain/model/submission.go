package model

import "time"

// Submission is one answer a user sent for a puzzle.
// A user may submit many times for the same puzzle.
type Submission struct {
	ID        int64
	UserID    int64
	PuzzleID  int64
	Correct   bool
	CreatedAt time.Time
}

// SubmissionAggregate summarizes a user's correct submissions.
// It is derived on every request and never persisted.
type SubmissionAggregate struct {
	UserID         int64
	SolvedCount    int
	LatestSolvedAt time.Time
}

// LeaderboardEntry is a ranked user. Rank is 1-based.
type LeaderboardEntry struct {
	Rank           int
	User           User
	SolvedCount    int
	LatestSolvedAt time.Time
}
