package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/simple-kyc/simple-kyc/internal/directory"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// Directory is the slice of the directory client the profile module uses.
type Directory interface {
	ListUsers(ctx context.Context, limit, skip int) (*directory.UsersPage, error)
	SearchUsers(ctx context.Context, q string) (*directory.UsersPage, error)
	GetUser(ctx context.Context, id string) (*directory.User, error)
	UpdateUser(ctx context.Context, id string, patch directory.UserPatch) (*directory.User, error)
}

// UpdateRequest is the editable subset of a profile. Field checks mirror
// the onboarding form.
type UpdateRequest struct {
	FirstName string `json:"firstName" validate:"omitempty,max=60"`
	LastName  string `json:"lastName" validate:"omitempty,max=60"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
	BirthDate string `json:"birthDate" validate:"omitempty,max=10"`

	Address *directory.Address `json:"address,omitempty"`
	Company *directory.Company `json:"company,omitempty"`
}

// Service applies the resource-level access rules on top of the directory.
type Service struct {
	dir      Directory
	validate *validator.Validate
}

// NewService constructs a profile Service.
func NewService(dir Directory) *Service {
	return &Service{dir: dir, validate: validator.New()}
}

// List returns a page of all profiles. The route guard has already
// required view:all-profiles; pagination bounds are normalized here.
func (s *Service) List(ctx context.Context, limit, skip int) (*directory.UsersPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}
	return s.dir.ListUsers(ctx, limit, skip)
}

// Search returns profiles matching the free-text query.
func (s *Service) Search(ctx context.Context, q string) (*directory.UsersPage, error) {
	return s.dir.SearchUsers(ctx, q)
}

// Get fetches one profile, enforcing the view rule: officers may view any
// profile, everyone else only their own.
func (s *Service) Get(ctx context.Context, viewer *rbac.Identity, targetID string) (*directory.User, error) {
	if viewer == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !rbac.CanAccessProfile(viewer.ID, viewer.Role, targetID) {
		return nil, shared.ErrAuthorizationDenied
	}
	return s.dir.GetUser(ctx, targetID)
}

// Update mutates one profile, enforcing the edit rule: only the owner may
// edit, whatever their role. The directory echo is returned as-is.
func (s *Service) Update(ctx context.Context, editor *rbac.Identity, targetID string, req UpdateRequest) (*directory.User, error) {
	if editor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !rbac.CanEditProfile(editor.ID, editor.Role, targetID) {
		return nil, shared.ErrAuthorizationDenied
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	patch := directory.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Address:   req.Address,
		Company:   req.Company,
	}
	return s.dir.UpdateUser(ctx, targetID, patch)
}

// IsValidationError reports whether err came from payload validation.
func IsValidationError(err error) bool {
	var verr validator.ValidationErrors
	return errors.As(err, &verr)
}
