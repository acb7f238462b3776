package ports

import (
	"context"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

// RegisterInput carries everything needed to create a directory account.
type RegisterInput struct {
	Username    string
	Password    string
	Pin         string
	Role        string
	FirstName   string
	LastName    string
	CompanyName string
}

// DirectoryService is the local fallback directory: a self-contained
// username/password/PIN scheme that works without the hosted provider.
type DirectoryService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Principal, *domain.Session, error)
	Login(ctx context.Context, username, password string) (*domain.Principal, *domain.Session, error)
	VerifyPin(ctx context.Context, username, pin string) error
	ResetPassword(ctx context.Context, username, pin, newPassword string) error
	// CurrentUser returns the principal behind a session token, performing
	// an implicit logout when the session marker has expired.
	CurrentUser(ctx context.Context, token string) (*domain.Principal, error)
	VerifyEmail(ctx context.Context, username string) error
	Logout(ctx context.Context, token string) error
}

// DirectoryRepository defines persistence for directory users.
type DirectoryRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, username, hash string) error
	MarkVerified(ctx context.Context, username string) error
}
