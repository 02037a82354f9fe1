package ranking_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/puzzlenode/internal/domain/model"
	"github.com/okian/puzzlenode/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2011, time.March, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func correct(userID, puzzleID int64, when time.Time) model.Submission {
	return model.Submission{UserID: userID, PuzzleID: puzzleID, Correct: true, CreatedAt: when}
}

func wrong(userID, puzzleID int64, when time.Time) model.Submission {
	return model.Submission{UserID: userID, PuzzleID: puzzleID, Correct: false, CreatedAt: when}
}

func ids(entries []model.LeaderboardEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.User.ID
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given a mix of correct and incorrect submissions", t, func() {
		subs := []model.Submission{
			correct(1, 10, at(1)),
			correct(1, 11, at(5)),
			wrong(1, 12, at(9)),
			correct(1, 10, at(3)),
			wrong(2, 10, at(2)),
			correct(3, 10, at(7)),
		}

		Convey("When aggregating", func() {
			aggs := ranking.Aggregate(subs)

			Convey("Then only users with a correct submission get an entry", func() {
				So(aggs, ShouldHaveLength, 2)
				So(aggs, ShouldContainKey, int64(1))
				So(aggs, ShouldContainKey, int64(3))
				So(aggs, ShouldNotContainKey, int64(2))
			})

			Convey("And counts and latest solve times come from correct submissions only", func() {
				So(aggs[1].SolvedCount, ShouldEqual, 3)
				So(aggs[1].LatestSolvedAt, ShouldEqual, at(5))
				So(aggs[3].SolvedCount, ShouldEqual, 1)
				So(aggs[3].LatestSolvedAt, ShouldEqual, at(7))
			})
		})
	})

	Convey("Given no submissions", t, func() {
		Convey("Then the aggregate map is empty", func() {
			So(ranking.Aggregate(nil), ShouldBeEmpty)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given users A, B and C", t, func() {
		users := []model.User{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}

		Convey("When A and B both solved three and C solved one", func() {
			subs := []model.Submission{
				correct(1, 1, at(1)), correct(1, 2, at(2)), correct(1, 3, at(3)),
				correct(2, 1, at(-3)), correct(2, 2, at(-2)), correct(2, 3, at(-1)),
				correct(3, 1, at(5)),
			}
			entries := ranking.Leaderboard(users, subs, ranking.DefaultLimit)

			Convey("Then B ranks first for reaching three earlier, then A, then C", func() {
				So(ids(entries), ShouldResemble, []int64{2, 1, 3})
			})

			Convey("And ranks are 1-based positions", func() {
				for i, e := range entries {
					So(e.Rank, ShouldEqual, i+1)
				}
				So(entries[0].SolvedCount, ShouldEqual, 3)
				So(entries[0].LatestSolvedAt, ShouldEqual, at(-1))
			})
		})

		Convey("When counts and latest solve times are equal", func() {
			subs := []model.Submission{correct(3, 1, at(1)), correct(1, 1, at(1)), correct(2, 1, at(1))}
			entries := ranking.Leaderboard(users, subs, ranking.DefaultLimit)

			Convey("Then the lower user id ranks first", func() {
				So(ids(entries), ShouldResemble, []int64{1, 2, 3})
			})
		})
	})

	Convey("Given an admin with ten correct submissions", t, func() {
		users := []model.User{
			{ID: 4, Name: "D", Admin: true},
			{ID: 5, Name: "E", DraftAccess: true},
			{ID: 6, Name: "F"},
		}
		var subs []model.Submission
		for p := int64(1); p <= 10; p++ {
			subs = append(subs, correct(4, p, at(int(p))), correct(5, p, at(int(p))))
		}
		subs = append(subs, correct(6, 1, at(30)))

		Convey("When ranking with limit 10", func() {
			entries := ranking.Leaderboard(users, subs, 10)

			Convey("Then neither the admin nor the draft-access user appears", func() {
				So(ids(entries), ShouldResemble, []int64{6})
			})
		})
	})

	Convey("Given users without any correct submission", t, func() {
		users := []model.User{{ID: 1}, {ID: 2}}
		subs := []model.Submission{wrong(1, 1, at(1)), correct(2, 1, at(2))}

		Convey("Then they are left out rather than listed with zero", func() {
			entries := ranking.Leaderboard(users, subs, 10)
			So(ids(entries), ShouldResemble, []int64{2})
		})
	})

	Convey("Given an aggregate for a user that is not in the user list", t, func() {
		aggs := map[int64]model.SubmissionAggregate{9: {UserID: 9, SolvedCount: 4, LatestSolvedAt: at(1)}}

		Convey("Then the inner join drops it", func() {
			So(ranking.Rank([]model.User{{ID: 1}}, aggs, 10), ShouldBeEmpty)
		})
	})

	Convey("Given a non-positive limit", t, func() {
		users := []model.User{{ID: 1}}
		subs := []model.Submission{correct(1, 1, at(1))}

		Convey("Then the leaderboard is empty and not nil", func() {
			for _, limit := range []int{0, -1, -100} {
				entries := ranking.Leaderboard(users, subs, limit)
				So(entries, ShouldNotBeNil)
				So(entries, ShouldBeEmpty)
			}
		})
	})
}

func TestRankProperties(t *testing.T) {
	Convey("Given random submission sets", t, func() {
		rng := rand.New(rand.NewSource(7))

		for round := 0; round < 50; round++ {
			users := make([]model.User, 0, 20)
			for id := int64(1); id <= 20; id++ {
				users = append(users, model.User{
					ID:          id,
					Admin:       rng.Intn(6) == 0,
					DraftAccess: rng.Intn(6) == 0,
				})
			}
			var subs []model.Submission
			for i := 0; i < 120; i++ {
				subs = append(subs, model.Submission{
					UserID:    int64(rng.Intn(25) + 1),
					PuzzleID:  int64(rng.Intn(8) + 1),
					Correct:   rng.Intn(3) > 0,
					CreatedAt: at(rng.Intn(500)),
				})
			}
			aggs := ranking.Aggregate(subs)
			eligibleSolvers := 0
			for _, u := range users {
				if _, ok := aggs[u.ID]; ok && u.EligibleForDisplay() {
					eligibleSolvers++
				}
			}
			limit := rng.Intn(15) + 1
			entries := ranking.Rank(users, aggs, limit)

			So(len(entries), ShouldEqual, min(limit, eligibleSolvers))
			for i, e := range entries {
				So(e.User.EligibleForDisplay(), ShouldBeTrue)
				So(e.SolvedCount, ShouldBeGreaterThan, 0)
				if i > 0 {
					prev := entries[i-1]
					So(prev.SolvedCount, ShouldBeGreaterThanOrEqualTo, e.SolvedCount)
					if prev.SolvedCount == e.SolvedCount {
						So(prev.LatestSolvedAt.After(e.LatestSolvedAt), ShouldBeFalse)
					}
				}
				pos, ok := ranking.Position(entries, e.User.ID)
				So(ok, ShouldBeTrue)
				So(pos, ShouldEqual, i+1)
			}
			So(ranking.Rank(users, aggs, limit), ShouldResemble, entries)
		}
	})
}

func TestPosition(t *testing.T) {
	Convey("Given a computed leaderboard", t, func() {
		users := []model.User{{ID: 1}, {ID: 2}, {ID: 3, Admin: true}, {ID: 4}}
		subs := []model.Submission{
			correct(1, 1, at(1)), correct(1, 2, at(2)),
			correct(2, 1, at(1)),
			correct(3, 1, at(1)), correct(3, 2, at(1)), correct(3, 3, at(1)),
			correct(4, 1, at(9)),
		}

		Convey("When the user is within the window", func() {
			entries := ranking.Leaderboard(users, subs, 10)
			pos, ok := ranking.Position(entries, 2)

			Convey("Then the 1-based position is returned", func() {
				So(ok, ShouldBeTrue)
				So(pos, ShouldEqual, 2)
			})
		})

		Convey("When the user falls outside the limit", func() {
			entries := ranking.Leaderboard(users, subs, 2)
			_, ok := ranking.Position(entries, 4)

			Convey("Then the user is not ranked", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the user is ineligible or never solved anything", func() {
			entries := ranking.Leaderboard(users, subs, 10)
			_, adminRanked := ranking.Position(entries, 3)
			_, strangerRanked := ranking.Position(entries, 99)

			Convey("Then neither is ranked", func() {
				So(adminRanked, ShouldBeFalse)
				So(strangerRanked, ShouldBeFalse)
			})
		})
	})
}
