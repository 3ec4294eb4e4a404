package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Address is the nested postal address of a directory user.
type Address struct {
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Company is the nested employment record of a directory user.
type Company struct {
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	Department string `json:"department,omitempty"`
}

// User is a directory entity. The directory owns the schema; fields the
// service never reads stay unmapped.
type User struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Username  string   `json:"username,omitempty"`
	Password  string   `json:"password,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	BirthDate string   `json:"birthDate,omitempty"`
	Image     string   `json:"image,omitempty"`
	Role      string   `json:"role,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Address   *Address `json:"address,omitempty"`
	Company   *Company `json:"company,omitempty"`
}

// UsersPage is the directory's paginated listing shape.
type UsersPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// UserPatch is a partial user entity sent on profile mutation. The
// directory is not required to persist the change; whatever comes back is
// returned to the caller.
type UserPatch struct {
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	BirthDate string   `json:"birthDate,omitempty"`
	Address   *Address `json:"address,omitempty"`
	Company   *Company `json:"company,omitempty"`
}

// ListUsers fetches a page of the directory.
func (c *Client) ListUsers(ctx context.Context, limit, skip int) (*UsersPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(skip))
	var page UsersPage
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchUsers queries the directory by free-text search.
func (c *Client) SearchUsers(ctx context.Context, q string) (*UsersPage, error) {
	query := url.Values{}
	query.Set("q", q)
	var page UsersPage
	if err := c.do(ctx, http.MethodGet, "/users/search", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser sends a partial entity to the directory and returns whatever
// the directory echoes back.
func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DisplayName renders the human-readable name for a directory user.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

// IDString returns the directory id normalized to a string for policy
// comparisons.
func (u *User) IDString() string {
	return fmt.Sprintf("%d", u.ID)
}
