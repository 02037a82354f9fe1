package repository

import (
	"context"
	"sync"

	"github.com/okian/puzzlenode/internal/domain/model"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use and
// returns copies, so callers never share its backing arrays.
type MemoryStore struct {
	mu          sync.RWMutex
	users       []model.User
	submissions []model.Submission
	nextSubID   int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextSubID: 1}
}

// PutUser inserts or replaces a user by id.
func (s *MemoryStore) PutUser(_ context.Context, u model.User) error {
	if u.ID <= 0 {
		return ErrInvalidUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			return nil
		}
	}
	s.users = append(s.users, u)
	return nil
}

// AddSubmission appends a submission and returns it with its assigned id.
// A zero ID is replaced with the next free id.
func (s *MemoryStore) AddSubmission(_ context.Context, sub model.Submission) model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == 0 {
		sub.ID = s.nextSubID
	}
	if sub.ID >= s.nextSubID {
		s.nextSubID = sub.ID + 1
	}
	s.submissions = append(s.submissions, sub)
	return sub
}

// Submissions returns submissions matching f in insertion order.
func (s *MemoryStore) Submissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if f.CorrectOnly && !sub.Correct {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

// Users returns users matching f in insertion order.
func (s *MemoryStore) Users(ctx context.Context, f UserFilter) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if f.EligibleOnly && !u.EligibleForDisplay() {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// FirstCorrectSubmission returns the earliest correct submission, lowest id
// first on equal timestamps.
func (s *MemoryStore) FirstCorrectSubmission(ctx context.Context, userID, puzzleID int64) (model.Submission, error) {
	if err := ctx.Err(); err != nil {
		return model.Submission{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		best  model.Submission
		found bool
	)
	for _, sub := range s.submissions {
		if sub.UserID != userID || sub.PuzzleID != puzzleID || !sub.Correct {
			continue
		}
		if !found || sub.CreatedAt.Before(best.CreatedAt) ||
			(sub.CreatedAt.Equal(best.CreatedAt) && sub.ID < best.ID) {
			best, found = sub, true
		}
	}
	if !found {
		return model.Submission{}, ErrNotFound
	}
	return best, nil
}
