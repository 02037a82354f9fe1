package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	repository "github.com/okian/puzzlenode/internal/adapters/repository"
	"github.com/okian/puzzlenode/internal/domain/model"
)

// entryView is the JSON form of one leaderboard row.
type entryView struct {
	Rank           int       `json:"rank"`
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	Solved         int       `json:"solved"`
	LatestSolvedAt time.Time `json:"latest_solved_at"`
}

// report is what the command prints. Position is omitted unless a user
// was asked for and is ranked.
type report struct {
	Leaderboard []entryView `json:"leaderboard"`
	Position    *int        `json:"position,omitempty"`
}

func newReport(entries []model.LeaderboardEntry) report {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			Rank:           e.Rank,
			UserID:         e.User.ID,
			Name:           model.DisplayName(e.User),
			Solved:         e.SolvedCount,
			LatestSolvedAt: e.LatestSolvedAt.UTC(),
		})
	}
	return report{Leaderboard: views}
}

func writeReport(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// fixture seeds a memory store.
type fixture struct {
	Users []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Nickname    string `json:"nickname"`
		Email       string `json:"email"`
		Admin       bool   `json:"admin"`
		DraftAccess bool   `json:"draft_access"`
	} `json:"users"`
	Submissions []struct {
		UserID    int64     `json:"user_id"`
		PuzzleID  int64     `json:"puzzle_id"`
		Correct   bool      `json:"correct"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"submissions"`
}

func seedFromFile(ctx context.Context, store *repository.MemoryStore, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("decode fixture %s: %w", path, err)
	}
	for _, u := range fx.Users {
		err := store.PutUser(ctx, model.User{
			ID:          u.ID,
			Name:        u.Name,
			Nickname:    u.Nickname,
			Email:       u.Email,
			Admin:       u.Admin,
			DraftAccess: u.DraftAccess,
		})
		if err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	for _, s := range fx.Submissions {
		store.AddSubmission(ctx, model.Submission{
			UserID:    s.UserID,
			PuzzleID:  s.PuzzleID,
			Correct:   s.Correct,
			CreatedAt: s.CreatedAt,
		})
	}
	return nil
}
