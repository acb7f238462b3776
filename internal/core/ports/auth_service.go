package ports

import (
	"context"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

// LoginInput is the tagged-variant login request. Strategy selects the
// backend; when empty it is inferred: an email means the hosted provider,
// a username means the local directory.
type LoginInput struct {
	Strategy string
	Username string
	Email    string
	Password string
}

// AuthResult is returned after a successful register, login or resolution.
type AuthResult struct {
	// AccessToken is this service's own signed token for downstream routes.
	AccessToken string
	// SessionToken is the opaque directory session marker, when one exists.
	SessionToken string
	Principal    *domain.Principal
	// Redirect is where the caller should navigate next ("" = stay).
	Redirect string
}

// OAuthStart is the first half of an OAuth sign-in: the authorization URL
// to redirect to, and the state the pending account type was cached under.
type OAuthStart struct {
	URL   string
	State string
}

// AuthService is the single surface the transport layer calls: all auth
// strategies, session resolution and redirect policy behind one interface.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	// StartOAuth builds the provider authorization URL and caches the
	// pre-selected account type until the callback consumes it.
	StartOAuth(ctx context.Context, provider, accountType string) (*OAuthStart, error)
	Resolve(ctx context.Context, in ResolveInput) (*AuthResult, *domain.Resolution, error)
	VerifyEmail(ctx context.Context, username string) error
	ResendVerification(ctx context.Context, email string) error
	Logout(ctx context.Context, sessionToken, hostedToken string) error
}
