package ports

import (
	"context"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

// ResolveInput carries everything one resolution attempt works from.
// The same input shape serves the mount-time resolution and the
// provider-pushed auth-state-change events.
type ResolveInput struct {
	// HostedAccessToken is the hosted-provider token, present when the
	// caller just returned from an OAuth redirect. A hosted session always
	// wins over the fallback one.
	HostedAccessToken string
	// FallbackToken is the local directory session marker, if any.
	FallbackToken string
	// CurrentPath is the route the caller is on; feeds the redirect policy.
	CurrentPath string
	// Subject keys the pending account-type selection (the OAuth state).
	Subject string
	// Version orders resolution attempts for one subject. Attempts with a
	// version at or below the last applied one are rejected as stale.
	// Zero means unversioned (mount-time call, always applied).
	Version uint64
}

// SessionResolver determines the current principal from whatever sessions
// exist and settles the role claim.
type SessionResolver interface {
	Resolve(ctx context.Context, in ResolveInput) (*domain.Resolution, error)
}
