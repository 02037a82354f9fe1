// Package ranking computes the solver leaderboard from submissions and users.
//
// The computation is split in two pure stages: Aggregate folds correct
// submissions into per-user stats, Rank joins those stats with users,
// filters, orders and truncates. Neither stage keeps state.
package ranking

import "github.com/okian/puzzlenode/internal/domain/model"

// Aggregate returns per-user stats over correct submissions. Users without a
// correct submission have no entry.
func Aggregate(submissions []model.Submission) map[int64]model.SubmissionAggregate {
	aggs := make(map[int64]model.SubmissionAggregate)
	for _, s := range submissions {
		if !s.Correct {
			continue
		}
		a, ok := aggs[s.UserID]
		if !ok {
			a = model.SubmissionAggregate{UserID: s.UserID, LatestSolvedAt: s.CreatedAt}
		}
		a.SolvedCount++
		if s.CreatedAt.After(a.LatestSolvedAt) {
			a.LatestSolvedAt = s.CreatedAt
		}
		aggs[s.UserID] = a
	}
	return aggs
}
