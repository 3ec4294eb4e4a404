package kyc

import (
	"context"
	"sort"
	"sync"

	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// Store keeps submissions and reviews in memory, keyed by user id. The
// review store is deliberately non-durable; it is simulated backend state.
type Store struct {
	mu          sync.RWMutex
	submissions map[string]*Submission
	reviews     map[string]*Review
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		submissions: make(map[string]*Submission),
		reviews:     make(map[string]*Review),
	}
}

// SaveSubmission stores or replaces a user's disclosure.
func (s *Store) SaveSubmission(ctx context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sub
	s.submissions[sub.UserID] = &copied
	return nil
}

// GetSubmission returns the disclosure for a user.
func (s *Store) GetSubmission(ctx context.Context, userID string) (*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

// SaveReview stores or replaces the review for a user.
func (s *Store) SaveReview(ctx context.Context, review *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *review
	s.reviews[review.UserID] = &copied
	return nil
}

// GetReview returns the review for a user.
func (s *Store) GetReview(ctx context.Context, userID string) (*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.reviews[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *review
	return &copied, nil
}

// ListReviews returns all reviews ordered by user id for stable output.
func (s *Store) ListReviews(ctx context.Context) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reviews := make([]Review, 0, len(s.reviews))
	for _, review := range s.reviews {
		reviews = append(reviews, *review)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].UserID < reviews[j].UserID })
	return reviews, nil
}
