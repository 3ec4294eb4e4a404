package kyc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// ErrUnknownStatus indicates a review status outside the closed set.
var ErrUnknownStatus = errors.New("kyc: unknown review status")

// ErrInvalidDisclosure indicates a disclosure with line items outside the
// allowed type sets.
var ErrInvalidDisclosure = errors.New("kyc: invalid disclosure")

// Notifier delivers review outcome notifications out of band.
type Notifier interface {
	NotifyReview(ctx context.Context, review Review) error
}

// Service orchestrates disclosure submission and officer review.
type Service struct {
	store    *Store
	notifier Notifier
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a kyc Service. notifier may be nil.
func NewService(store *Store, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitDisclosure stores a user's financial disclosure. Only the owner
// may submit; a pending review is opened if none exists yet.
func (s *Service) SubmitDisclosure(ctx context.Context, actor *rbac.Identity, sub Submission) (*Submission, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if actor.ID != sub.UserID {
		return nil, shared.ErrAuthorizationDenied
	}
	if err := s.validate.Struct(sub); err != nil {
		return nil, fmt.Errorf("kyc: %w", err)
	}
	if err := validateSections(sub); err != nil {
		return nil, err
	}

	sub.SubmittedAt = s.now().UTC()
	if err := s.store.SaveSubmission(ctx, &sub); err != nil {
		return nil, err
	}
	if _, err := s.store.GetReview(ctx, sub.UserID); err != nil {
		pending := Review{
			ID:     uuid.NewString(),
			UserID: sub.UserID,
			Status: StatusPending,
		}
		if err := s.store.SaveReview(ctx, &pending); err != nil {
			return nil, err
		}
	}
	return &sub, nil
}

// GetSubmission returns a user's disclosure, applying the profile access
// rule: officers may read any disclosure, users only their own.
func (s *Service) GetSubmission(ctx context.Context, actor *rbac.Identity, userID string) (*Submission, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !rbac.CanAccessProfile(actor.ID, actor.Role, userID) {
		return nil, shared.ErrAuthorizationDenied
	}
	return s.store.GetSubmission(ctx, userID)
}

// GetReview returns the review for a user. Officers holding
// view:all-reviews may read any review; users holding view:own-review may
// read their own.
func (s *Service) GetReview(ctx context.Context, actor *rbac.Identity, userID string) (*Review, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if rbac.HasPermission(actor.Role, rbac.PermViewAllReviews) {
		return s.store.GetReview(ctx, userID)
	}
	if actor.ID == userID && rbac.HasPermission(actor.Role, rbac.PermViewOwnReview) {
		return s.store.GetReview(ctx, userID)
	}
	return nil, shared.ErrAuthorizationDenied
}

// ListReviews returns every review; requires view:all-reviews.
func (s *Service) ListReviews(ctx context.Context, actor *rbac.Identity) ([]Review, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !rbac.HasPermission(actor.Role, rbac.PermViewAllReviews) {
		return nil, shared.ErrAuthorizationDenied
	}
	return s.store.ListReviews(ctx)
}

// SubmitReview records an officer's decision and queues the notification.
// Requires access:review-page.
func (s *Service) SubmitReview(ctx context.Context, actor *rbac.Identity, userID string, status Status, notes string) (*Review, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !rbac.HasPermission(actor.Role, rbac.PermAccessReviewPage) {
		return nil, shared.ErrAuthorizationDenied
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	review := Review{
		ID:         uuid.NewString(),
		UserID:     userID,
		Status:     status,
		ReviewedBy: actor.ID,
		ReviewedAt: s.now().UTC(),
		Notes:      notes,
	}
	if err := s.store.SaveReview(ctx, &review); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyReview(ctx, review); err != nil && s.logger != nil {
			// Notification is best effort; the review itself is recorded.
			s.logger.Warn("review notification failed",
				slog.String("user", userID),
				slog.Any("error", err))
		}
	}
	return &review, nil
}

func validateSections(sub Submission) error {
	sections := []struct {
		name    string
		items   []LineItem
		allowed []string
	}{
		{"incomes", sub.Incomes, IncomeTypes},
		{"assets", sub.Assets, AssetTypes},
		{"liabilities", sub.Liabilities, LiabilityTypes},
		{"sourcesOfWealth", sub.SourcesOfWealth, SourceOfWealthTypes},
	}
	for _, section := range sections {
		for _, item := range section.items {
			if !slices.Contains(section.allowed, item.Type) {
				return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidDisclosure, section.name, item.Type)
			}
		}
	}
	return nil
}
