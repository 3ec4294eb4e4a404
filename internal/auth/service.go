package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/simple-kyc/simple-kyc/internal/directory"
	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
)

// Lookup is the slice of the directory the login flow needs.
type Lookup interface {
	SearchUsers(ctx context.Context, q string) (*directory.UsersPage, error)
}

// Service wraps authentication business rules. Credentials live in the
// external directory; the service only matches and verifies.
type Service struct {
	lookup Lookup
	fold   cases.Caser
}

// NewService constructs a new Service.
func NewService(lookup Lookup) *Service {
	return &Service{lookup: lookup, fold: cases.Fold()}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login resolves the identifier (email or username) against the directory
// and verifies the password. On success it derives the immutable session
// identity, mapping elevated directory roles to officer.
func (s *Service) Login(ctx context.Context, identifier, password string) (*rbac.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, shared.ErrInvalidCredentials
	}

	page, err := s.lookup.SearchUsers(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("auth: directory lookup: %w", err)
	}

	found := s.match(page.Users, identifier)
	if found == nil {
		return nil, shared.ErrInvalidCredentials
	}
	if found.Password != password {
		return nil, shared.ErrInvalidCredentials
	}

	identity := rbac.Identity{
		ID:    found.IDString(),
		Name:  found.DisplayName(),
		Email: found.Email,
		Role:  rbac.ParseRole(strings.ToLower(found.Role)),
	}
	if identity.Name == "" {
		identity.Name = identifier
	}
	if identity.Email == "" {
		identity.Email = identifier
	}
	return &identity, nil
}

// LandingPath returns the post-login destination for the identity.
func LandingPath(identity *rbac.Identity) string {
	if identity == nil {
		return "/"
	}
	if identity.Role == rbac.RoleOfficer {
		return "/profiles"
	}
	return "/profiles/" + identity.ID
}

func (s *Service) match(users []directory.User, identifier string) *directory.User {
	byEmail := emailPattern.MatchString(identifier)
	folded := s.fold.String(identifier)
	for i := range users {
		candidate := &users[i]
		if byEmail {
			if s.fold.String(candidate.Email) == folded {
				return candidate
			}
			continue
		}
		if s.fold.String(candidate.Username) == folded {
			return candidate
		}
	}
	return nil
}
