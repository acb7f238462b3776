package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// ResolverService determines the current principal from whatever sessions
// exist, settles the role claim, and applies the redirect policy.
//
// Resolution runs both at mount time and on every provider-pushed
// auth-state-change event. Versioned attempts for the same subject are
// applied in order: a version at or below the last applied one returns
// domain.ErrStaleResolution instead of clobbering newer state.
type ResolverService struct {
	identity   ports.IdentityProvider
	directory  ports.DirectoryService
	selections ports.SelectionCache
	log        zerolog.Logger

	mu          sync.Mutex
	lastVersion map[string]uint64
}

func NewResolverService(identity ports.IdentityProvider, directory ports.DirectoryService, selections ports.SelectionCache, log zerolog.Logger) *ResolverService {
	return &ResolverService{
		identity:    identity,
		directory:   directory,
		selections:  selections,
		log:         log,
		lastVersion: make(map[string]uint64),
	}
}

// Resolve walks the state machine:
//
//	Unresolved -> Resolving -> Anonymous
//	                        -> AuthenticatedWithRole
//	                        -> AuthenticatedNoRole -> AuthenticatedWithRole
//	                                               -> NeedsRoleSelection
//
// A hosted session wins when its access token is present (the OAuth
// callback case); otherwise the fallback session resolves. Resolution is
// idempotent: once a role is assigned, repeating the call never changes it.
func (s *ResolverService) Resolve(ctx context.Context, in ports.ResolveInput) (*domain.Resolution, error) {
	if err := s.admitVersion(in); err != nil {
		return nil, err
	}

	state := domain.StateUnresolved
	state = advance(state, domain.StateResolving)

	principal, hosted := s.lookupPrincipal(ctx, in)
	if principal == nil {
		res := &domain.Resolution{State: advance(state, domain.StateAnonymous), Version: in.Version}
		return res, nil
	}

	if principal.Role != "" {
		state = advance(state, domain.StateAuthenticatedWithRole)
		return s.finish(state, principal, in), nil
	}

	state = advance(state, domain.StateAuthenticatedNoRole)

	role := s.pendingRole(ctx, in.Subject)
	if hosted {
		if _, err := s.identity.UpdateMetadata(ctx, principal.ID, ports.UserMetadata{Role: role}); err != nil {
			// One attempt only: fall back to a manual chooser rather than
			// retrying indefinitely.
			s.log.Warn().Err(err).Str("user_id", principal.ID).Msg("role assignment failed")
			return &domain.Resolution{
				State:     advance(state, domain.StateNeedsRoleSelection),
				Principal: principal,
				Redirect:  domain.PathRoleSelection,
				Version:   in.Version,
			}, nil
		}
	}
	principal.Role = role

	state = advance(state, domain.StateAuthenticatedWithRole)
	return s.finish(state, principal, in), nil
}

// lookupPrincipal returns the resolved principal and whether it came from
// the hosted provider.
func (s *ResolverService) lookupPrincipal(ctx context.Context, in ports.ResolveInput) (*domain.Principal, bool) {
	if in.HostedAccessToken != "" {
		user, err := s.identity.GetUser(ctx, in.HostedAccessToken)
		if err == nil {
			return hostedPrincipal(user), true
		}
		s.log.Warn().Err(err).Msg("hosted session lookup failed, trying fallback")
	}

	if in.FallbackToken != "" {
		principal, err := s.directory.CurrentUser(ctx, in.FallbackToken)
		if err == nil {
			return principal, false
		}
		if !errors.Is(err, domain.ErrSessionExpired) {
			s.log.Warn().Err(err).Msg("fallback session lookup failed")
		}
	}

	return nil, false
}

// pendingRole consumes the cached account-type selection, defaulting to
// client when nothing was cached or the cached value is not a valid role.
func (s *ResolverService) pendingRole(ctx context.Context, subject string) string {
	role, err := s.selections.TakePending(ctx, subject)
	if err != nil {
		s.log.Warn().Err(err).Str("subject", subject).Msg("pending selection read failed")
		return domain.RoleClient
	}
	if !domain.ValidRole(role) {
		return domain.RoleClient
	}
	return role
}

func (s *ResolverService) finish(state domain.ResolutionState, principal *domain.Principal, in ports.ResolveInput) *domain.Resolution {
	return &domain.Resolution{
		State:     state,
		Principal: principal,
		Redirect:  domain.RedirectTarget(principal.Role, in.CurrentPath),
		Version:   in.Version,
	}
}

// admitVersion enforces the per-subject monotonic ordering of versioned
// resolution attempts. Unversioned (mount-time) attempts always pass.
func (s *ResolverService) admitVersion(in ports.ResolveInput) error {
	if in.Version == 0 || in.Subject == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Version <= s.lastVersion[in.Subject] {
		return domain.ErrStaleResolution
	}
	s.lastVersion[in.Subject] = in.Version
	return nil
}

// advance asserts a state machine transition. An invalid transition is a
// programming error, so it panics rather than returning an error.
func advance(from, to domain.ResolutionState) domain.ResolutionState {
	if !from.CanTransitionTo(to) {
		panic("resolver: invalid transition " + string(from) + " -> " + string(to))
	}
	return to
}

func hostedPrincipal(u *ports.HostedUser) *domain.Principal {
	return &domain.Principal{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.Metadata.FirstName,
		LastName:    u.Metadata.LastName,
		Role:        u.Metadata.Role,
		CompanyName: u.Metadata.CompanyName,
		IsVerified:  u.EmailVerified,
		CreatedAt:   u.CreatedAt,
	}
}
