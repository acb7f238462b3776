package domain

import (
	"errors"
	"time"
)

const (
	RoleClient = "client"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUsernameTaken = errors.New("username already taken")
var ErrDuplicateAccount = errors.New("account already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidPin = errors.New("invalid pin")
var ErrInvalidFormat = errors.New("invalid format")
var ErrSessionExpired = errors.New("session expired")
var ErrMetadataUpdate = errors.New("metadata update failed")
var ErrProvider = errors.New("identity provider error")
var ErrForbidden = errors.New("access forbidden")
var ErrStaleResolution = errors.New("stale resolution event")

// ValidRole reports whether r is one of the three marketplace roles.
func ValidRole(r string) bool {
	return r == RoleClient || r == RoleVendor || r == RoleAdmin
}

// User is a stored directory row, credentials included.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	PinHash      string    `json:"-"`
	Role         string    `json:"role"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated view of a user: what the rest of the
// system sees once a session has been resolved. It never carries credentials.
type Principal struct {
	ID          string    `json:"id"`
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Role        string    `json:"role"`
	CompanyName string    `json:"company_name,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Principal derives the credential-free view of a user.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		CompanyName: u.CompanyName,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}
