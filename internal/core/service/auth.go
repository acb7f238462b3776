package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// AuthService is the composition root of the auth flows: every strategy
// (directory, hosted password, OAuth, bypass) funnels through it, and every
// authenticated outcome converges on the session resolver.
type AuthService struct {
	directory  ports.DirectoryService
	identity   ports.IdentityProvider
	resolver   ports.SessionResolver
	selections ports.SelectionCache
	tokens     *TokenManager
	log        zerolog.Logger
}

func NewAuthService(
	directory ports.DirectoryService,
	identity ports.IdentityProvider,
	resolver ports.SessionResolver,
	selections ports.SelectionCache,
	tokens *TokenManager,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		directory:  directory,
		identity:   identity,
		resolver:   resolver,
		selections: selections,
		tokens:     tokens,
		log:        log,
	}
}

// Register creates a directory account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	principal, session, err := s.directory.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.result(principal, session, domain.StrategyDirectory, "/")
}

// Login authenticates using the strategy tagged in the input. Directory
// logins (including the bypass pair) are handled locally; hosted logins go
// through the provider and then through the canonical resolution path so
// role settlement behaves identically for every strategy.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	switch strategy(in) {
	case domain.StrategyDirectory:
		principal, session, err := s.directory.Login(ctx, in.Username, in.Password)
		if err != nil {
			return nil, err
		}
		return s.result(principal, session, session.Strategy, "/")

	case domain.StrategyHosted:
		hosted, err := s.identity.SignInWithPassword(ctx, in.Email, in.Password)
		if err != nil {
			return nil, err
		}
		resolution, err := s.resolver.Resolve(ctx, ports.ResolveInput{
			HostedAccessToken: hosted.AccessToken,
			Subject:           in.Email,
			CurrentPath:       "/",
		})
		if err != nil {
			return nil, err
		}
		if resolution.Principal == nil {
			return nil, fmt.Errorf("%w: signed-in user could not be resolved", domain.ErrProvider)
		}
		return s.resolved(resolution)

	default:
		return nil, fmt.Errorf("%w: unknown login strategy", domain.ErrInvalidFormat)
	}
}

// StartOAuth builds the provider authorization URL. The pre-selected
// account type is cached under a fresh state value; the redirect round-trip
// loses all in-memory context, so the callback recovers it by state.
func (s *AuthService) StartOAuth(ctx context.Context, provider, accountType string) (*ports.OAuthStart, error) {
	state := uuid.NewString()

	if accountType != "" {
		if !domain.ValidRole(accountType) || accountType == domain.RoleAdmin {
			return nil, fmt.Errorf("%w: account type must be client or vendor", domain.ErrInvalidFormat)
		}
		if err := s.selections.StorePending(ctx, state, accountType); err != nil {
			return nil, err
		}
	}

	url, err := s.identity.OAuthURL(provider, state)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("provider", provider).Str("account_type", accountType).Msg("oauth flow started")
	return &ports.OAuthStart{URL: url, State: state}, nil
}

// Resolve runs one resolution attempt and, when it authenticates, issues
// an access token for the resolved principal.
func (s *AuthService) Resolve(ctx context.Context, in ports.ResolveInput) (*ports.AuthResult, *domain.Resolution, error) {
	resolution, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	if !resolution.Authenticated() {
		return &ports.AuthResult{Redirect: resolution.Redirect}, resolution, nil
	}

	result, err := s.resolved(resolution)
	if err != nil {
		return nil, nil, err
	}
	return result, resolution, nil
}

// VerifyEmail marks the directory account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, username string) error {
	return s.directory.VerifyEmail(ctx, username)
}

// ResendVerification asks the hosted provider to re-send its verification mail.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	return s.identity.ResendVerification(ctx, email)
}

// Logout tears down whichever sessions exist. Partial failures are logged,
// not surfaced: the caller is signing out either way.
func (s *AuthService) Logout(ctx context.Context, sessionToken, hostedToken string) error {
	if sessionToken != "" {
		if err := s.directory.Logout(ctx, sessionToken); err != nil {
			s.log.Warn().Err(err).Msg("directory logout failed")
		}
	}
	if hostedToken != "" {
		if err := s.identity.SignOut(ctx, hostedToken); err != nil {
			s.log.Warn().Err(err).Msg("hosted sign-out failed")
		}
	}
	return nil
}

func (s *AuthService) result(principal *domain.Principal, session *domain.Session, strategy, currentPath string) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(principal, strategy)
	if err != nil {
		return nil, err
	}
	res := &ports.AuthResult{
		AccessToken: token,
		Principal:   principal,
		Redirect:    domain.RedirectTarget(principal.Role, currentPath),
	}
	if session != nil {
		res.SessionToken = session.Token
	}
	return res, nil
}

func (s *AuthService) resolved(resolution *domain.Resolution) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(resolution.Principal, domain.StrategyHosted)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		AccessToken: token,
		Principal:   resolution.Principal,
		Redirect:    resolution.Redirect,
	}, nil
}

// strategy infers the login backend when the request leaves it untagged.
func strategy(in ports.LoginInput) string {
	if in.Strategy != "" {
		return in.Strategy
	}
	if in.Email != "" && strings.Contains(in.Email, "@") {
		return domain.StrategyHosted
	}
	return domain.StrategyDirectory
}
