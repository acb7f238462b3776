package ports

import (
	"context"
	"time"
)

// UserMetadata is the profile payload attached to a hosted-provider account.
// Role is the only field the resolver ever writes back.
type UserMetadata struct {
	Role        string `json:"role,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// HostedUser is a user record as returned by the hosted identity provider.
type HostedUser struct {
	ID            string
	Email         string
	EmailVerified bool
	Metadata      UserMetadata
	CreatedAt     time.Time
}

// HostedSession is an access credential issued by the hosted provider.
type HostedSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *HostedUser
}

// IdentityProvider abstracts the hosted identity provider (the credential
// store adapter). OAuth sign-in is split in two: OAuthURL builds the
// authorization URL for the caller to redirect to, and the returned access
// token is later handed to GetUser during callback resolution.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string, meta UserMetadata) (*HostedUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (*HostedSession, error)
	OAuthURL(provider, state string) (string, error)
	// GetUser reads the user behind an access token. Side-effect-free.
	GetUser(ctx context.Context, accessToken string) (*HostedUser, error)
	// UpdateMetadata merges patch into the stored user record.
	// Returns domain.ErrUserNotFound when the user no longer exists.
	UpdateMetadata(ctx context.Context, userID string, patch UserMetadata) (*HostedUser, error)
	ResendVerification(ctx context.Context, email string) error
	// SignOut invalidates the hosted session globally.
	SignOut(ctx context.Context, accessToken string) error
}
