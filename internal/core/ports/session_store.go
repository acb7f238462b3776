package ports

import (
	"context"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

// SessionStore persists directory session markers for their TTL.
type SessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	// Get returns domain.ErrSessionExpired for missing or expired tokens.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// SelectionCache holds the account type a user picked before an OAuth
// redirect. The value is consumed exactly once: Take returns it and clears
// it in the same call. An absent entry yields "" and no error.
type SelectionCache interface {
	StorePending(ctx context.Context, subject, role string) error
	TakePending(ctx context.Context, subject string) (string, error)
}
