package ranking

import (
	"sort"

	"github.com/okian/puzzlenode/internal/domain/model"
)

// DefaultLimit is the leaderboard size when the caller does not pick one.
const DefaultLimit = 10

// Rank builds the leaderboard: users joined with their aggregate (users
// without one are dropped), restricted to users eligible for display, ordered
// by solved count desc, then latest solve asc, then user id asc, and cut to
// limit entries. A limit <= 0 yields an empty leaderboard.
func Rank(users []model.User, aggs map[int64]model.SubmissionAggregate, limit int) []model.LeaderboardEntry {
	if limit <= 0 {
		return []model.LeaderboardEntry{}
	}

	entries := make([]model.LeaderboardEntry, 0, len(aggs))
	for _, u := range users {
		a, ok := aggs[u.ID]
		if !ok || !u.EligibleForDisplay() {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			User:           u,
			SolvedCount:    a.SolvedCount,
			LatestSolvedAt: a.LatestSolvedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// less reports whether a ranks ahead of b. Reaching a count earlier wins ties.
func less(a, b model.LeaderboardEntry) bool {
	if a.SolvedCount != b.SolvedCount {
		return a.SolvedCount > b.SolvedCount
	}
	if !a.LatestSolvedAt.Equal(b.LatestSolvedAt) {
		return a.LatestSolvedAt.Before(b.LatestSolvedAt)
	}
	return a.User.ID < b.User.ID
}

// Position returns the 1-based position of userID in entries. The second
// result is false when the user is not on the leaderboard.
func Position(entries []model.LeaderboardEntry, userID int64) (int, bool) {
	for i, e := range entries {
		if e.User.ID == userID {
			return i + 1, true
		}
	}
	return 0, false
}

// Leaderboard runs both stages.
func Leaderboard(users []model.User, submissions []model.Submission, limit int) []model.LeaderboardEntry {
	return Rank(users, Aggregate(submissions), limit)
}
