package user

import (
	"time"

	"github.com/google/uuid"
)

// Role governs every authorization decision.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User is the identity record. PasswordHash is empty for accounts created
// through an external provider; ExternalID is empty when no provider is linked.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	ExternalID   string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasPassword reports whether credential login is possible for the account.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// Profile is the sanitized view of a User: every field except the password.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	ExternalID  string     `json:"externalId,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Sanitize drops the password hash.
func (u User) Sanitize() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		ExternalID:  u.ExternalID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// SanitizeAll maps a slice of users to their sanitized views.
func SanitizeAll(users []User) []Profile {
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitize())
	}
	return out
}

// CreateInput describes a new account. Password and ExternalID are optional.
type CreateInput struct {
	Name       string
	Email      string
	Password   string
	Role       Role
	ExternalID string
}

// Patch is a partial update: nil fields are left untouched.
type Patch struct {
	Name       *string
	Email      *string
	Password   *string
	Role       *Role
	ExternalID *string
}

// Sort fields accepted by List. Keys are the public names, values the storage columns.
var sortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"createdAt":   "created_at",
	"lastLoginAt": "last_login_at",
}

// DefaultSortBy is used when Filters.SortBy is empty.
const DefaultSortBy = "createdAt"

// SortColumn resolves a public sort field to its storage column.
func SortColumn(field string) (string, bool) {
	col, ok := sortColumns[field]
	return col, ok
}

// Filters drive the admin listing. Order, Page and Limit are mandatory; zero
// values mean "not supplied".
type Filters struct {
	Role   Role
	SortBy string
	Order  string
	Page   int
	Limit  int
}

// Complete reports whether the mandatory pagination fields are all present.
func (f Filters) Complete() bool {
	return f.Order != "" && f.Page > 0 && f.Limit > 0
}

// ListQuery is the validated form of Filters handed to the repository.
type ListQuery struct {
	Role       Role
	SortColumn string
	Descending bool
	Offset     int
	Limit      int
}

// Pagination describes the page returned by List.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is a page of sanitized users.
type Page struct {
	Data       []Profile  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
