package kyc_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-kyc/simple-kyc/internal/kyc"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
	_ "github.com/simple-kyc/simple-kyc/testing"
)

type recordingNotifier struct {
	reviews []kyc.Review
	err     error
}

func (r *recordingNotifier) NotifyReview(_ context.Context, review kyc.Review) error {
	r.reviews = append(r.reviews, review)
	return r.err
}

var (
	applicant = &rbac.Identity{ID: "1", Name: "Emily", Role: rbac.RoleUser}
	reviewer  = &rbac.Identity{ID: "9", Name: "Michael", Role: rbac.RoleOfficer}
)

func newService(notifier kyc.Notifier) *kyc.Service {
	return kyc.NewService(kyc.NewStore(), notifier, slog.New(slog.DiscardHandler))
}

func disclosureFixture(userID string) kyc.Submission {
	return kyc.Submission{
		UserID: userID,
		Incomes: []kyc.LineItem{
			{Type: "Salary", Amount: 5000},
			{Type: "Bonus", Amount: 1000},
		},
		Assets:          []kyc.LineItem{{Type: "Stock", Amount: 20000}},
		Liabilities:     []kyc.LineItem{{Type: "Mortgage", Amount: 150000}},
		SourcesOfWealth: []kyc.LineItem{{Type: "Inheritance", Amount: 30000}},
		RiskTolerance:   "medium",
	}
}

func TestSubmitDisclosureOwnerOnly(t *testing.T) {
	service := newService(nil)

	saved, err := service.SubmitDisclosure(context.Background(), applicant, disclosureFixture("1"))
	require.NoError(t, err)
	assert.False(t, saved.SubmittedAt.IsZero())

	_, err = service.SubmitDisclosure(context.Background(), applicant, disclosureFixture("2"))
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)

	// Even officers submit only their own disclosure.
	_, err = service.SubmitDisclosure(context.Background(), reviewer, disclosureFixture("1"))
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)

	_, err = service.SubmitDisclosure(context.Background(), nil, disclosureFixture("1"))
	assert.ErrorIs(t, err, shared.ErrAuthenticationRequired)
}

func TestSubmitDisclosureOpensPendingReview(t *testing.T) {
	service := newService(nil)

	_, err := service.SubmitDisclosure(context.Background(), applicant, disclosureFixture("1"))
	require.NoError(t, err)

	review, err := service.GetReview(context.Background(), applicant, "1")
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusPending, review.Status)
	assert.NotEmpty(t, review.ID)
}

func TestNetWorthSumsAllSections(t *testing.T) {
	sub := disclosureFixture("1")
	assert.Equal(t, float64(5000+1000+20000+150000+30000), sub.NetWorth())

	empty := kyc.Submission{UserID: "1"}
	assert.Zero(t, empty.NetWorth())
}

func TestSubmitDisclosureRejectsUnknownTypes(t *testing.T) {
	service := newService(nil)

	sub := disclosureFixture("1")
	sub.Assets = append(sub.Assets, kyc.LineItem{Type: "Yacht", Amount: 1})
	_, err := service.SubmitDisclosure(context.Background(), applicant, sub)
	assert.ErrorIs(t, err, kyc.ErrInvalidDisclosure)
}

func TestSubmitDisclosureRejectsNonPositiveAmounts(t *testing.T) {
	service := newService(nil)

	sub := disclosureFixture("1")
	sub.Incomes[0].Amount = 0
	_, err := service.SubmitDisclosure(context.Background(), applicant, sub)
	require.Error(t, err)
}

func TestGetSubmissionFollowsProfileAccessRule(t *testing.T) {
	service := newService(nil)
	_, err := service.SubmitDisclosure(context.Background(), applicant, disclosureFixture("1"))
	require.NoError(t, err)

	_, err = service.GetSubmission(context.Background(), applicant, "1")
	assert.NoError(t, err)

	_, err = service.GetSubmission(context.Background(), reviewer, "1")
	assert.NoError(t, err, "officers may read any disclosure")

	other := &rbac.Identity{ID: "2", Role: rbac.RoleUser}
	_, err = service.GetSubmission(context.Background(), other, "1")
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)
}

func TestSubmitReviewOfficerOnly(t *testing.T) {
	notifier := &recordingNotifier{}
	service := newService(notifier)

	review, err := service.SubmitReview(context.Background(), reviewer, "1", kyc.StatusApproved, "docs complete")
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusApproved, review.Status)
	assert.Equal(t, "9", review.ReviewedBy)
	assert.False(t, review.ReviewedAt.IsZero())

	require.Len(t, notifier.reviews, 1)
	assert.Equal(t, "1", notifier.reviews[0].UserID)

	_, err = service.SubmitReview(context.Background(), applicant, "2", kyc.StatusApproved, "")
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)
}

func TestSubmitReviewUnknownStatus(t *testing.T) {
	service := newService(nil)

	_, err := service.SubmitReview(context.Background(), reviewer, "1", "escalated", "")
	assert.ErrorIs(t, err, kyc.ErrUnknownStatus)
}

func TestSubmitReviewSurvivesNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: assert.AnError}
	service := newService(notifier)

	review, err := service.SubmitReview(context.Background(), reviewer, "1", kyc.StatusRejected, "missing documents")
	require.NoError(t, err, "notification is best effort")
	assert.Equal(t, kyc.StatusRejected, review.Status)
}

func TestReviewVisibility(t *testing.T) {
	service := newService(nil)
	_, err := service.SubmitReview(context.Background(), reviewer, "1", kyc.StatusApproved, "")
	require.NoError(t, err)

	// Own review is visible via view:own-review.
	review, err := service.GetReview(context.Background(), applicant, "1")
	require.NoError(t, err)
	assert.Equal(t, kyc.StatusApproved, review.Status)

	// Another user's review is not.
	other := &rbac.Identity{ID: "2", Role: rbac.RoleUser}
	_, err = service.GetReview(context.Background(), other, "1")
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)

	// Officers see everything.
	_, err = service.GetReview(context.Background(), reviewer, "1")
	assert.NoError(t, err)
}

func TestListReviewsOfficerOnlyAndOrdered(t *testing.T) {
	service := newService(nil)
	for _, userID := range []string{"3", "1", "2"} {
		_, err := service.SubmitReview(context.Background(), reviewer, userID, kyc.StatusPending, "")
		require.NoError(t, err)
	}

	reviews, err := service.ListReviews(context.Background(), reviewer)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, "1", reviews[0].UserID)
	assert.Equal(t, "3", reviews[2].UserID)

	_, err = service.ListReviews(context.Background(), applicant)
	assert.ErrorIs(t, err, shared.ErrAuthorizationDenied)
}
