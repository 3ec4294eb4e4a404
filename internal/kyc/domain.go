package kyc

import "time"

// Status is the review outcome for a submission.
type Status string

// Review statuses.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is a known review status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// LineItem is one entry in a disclosure section.
type LineItem struct {
	Type   string  `json:"type" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

// Submission is a user's financial disclosure. Sections mirror the
// onboarding form: incomes (A), assets (B), liabilities (C), sources of
// wealth (D).
type Submission struct {
	UserID          string     `json:"userId"`
	Incomes         []LineItem `json:"incomes" validate:"dive"`
	Assets          []LineItem `json:"assets" validate:"dive"`
	Liabilities     []LineItem `json:"liabilities" validate:"dive"`
	SourcesOfWealth []LineItem `json:"sourcesOfWealth" validate:"dive"`
	Experience      string     `json:"experience" validate:"omitempty,max=500"`
	RiskTolerance   string     `json:"riskTolerance" validate:"omitempty,oneof=low medium high"`
	SubmittedAt     time.Time  `json:"submittedAt"`
}

// Allowed line item types per section.
var (
	IncomeTypes         = []string{"Salary", "Bonus", "Investment", "Other"}
	AssetTypes          = []string{"Bond", "Stock", "Property", "Cash", "Other"}
	LiabilityTypes      = []string{"Personal Loan", "Mortgage", "Credit Card", "Auto Loan", "Other"}
	SourceOfWealthTypes = []string{"Inheritance", "Donation", "Gift", "Other"}
)

// NetWorth is the sum of all section totals (A + B + C + D).
func (s *Submission) NetWorth() float64 {
	var total float64
	for _, section := range [][]LineItem{s.Incomes, s.Assets, s.Liabilities, s.SourcesOfWealth} {
		for _, item := range section {
			total += item.Amount
		}
	}
	return total
}

// Review records an officer's decision on a user's submission.
type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Status     Status    `json:"status"`
	ReviewedBy string    `json:"reviewedBy,omitempty"`
	ReviewedAt time.Time `json:"reviewedAt,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}
