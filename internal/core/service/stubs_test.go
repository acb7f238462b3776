package service

import (
	"context"
	"sync"
	"time"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// --- directory repository stub ---

type stubDirectoryRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubDirectoryRepo() *stubDirectoryRepo {
	return &stubDirectoryRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubDirectoryRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUsernameTaken
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubDirectoryRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubDirectoryRepo) UpdatePasswordHash(_ context.Context, username, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubDirectoryRepo) MarkVerified(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsVerified = true
	return nil
}

// --- session store stub ---

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.sessions[session.Token] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	clone := *session
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// --- selection cache stub ---

type stubSelectionCache struct {
	mu      sync.Mutex
	pending map[string]string
}

func newStubSelectionCache() *stubSelectionCache {
	return &stubSelectionCache{pending: make(map[string]string)}
}

func (c *stubSelectionCache) StorePending(_ context.Context, subject, role string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[subject] = role
	return nil
}

func (c *stubSelectionCache) TakePending(_ context.Context, subject string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role := c.pending[subject]
	delete(c.pending, subject)
	return role, nil
}

// --- identity provider stub ---

type stubIdentityProvider struct {
	mu             sync.Mutex
	usersByToken   map[string]*ports.HostedUser
	signInSession  *ports.HostedSession
	signInErr      error
	updateErr      error
	updateCalls    int
	signOutTokens  []string
	resendEmails   []string
	signUpAccounts map[string]*ports.HostedUser
}

func newStubIdentityProvider() *stubIdentityProvider {
	return &stubIdentityProvider{
		usersByToken:   make(map[string]*ports.HostedUser),
		signUpAccounts: make(map[string]*ports.HostedUser),
	}
}

func (p *stubIdentityProvider) SignUp(_ context.Context, email, _ string, meta ports.UserMetadata) (*ports.HostedUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.signUpAccounts[email]; exists {
		return nil, domain.ErrDuplicateAccount
	}
	u := &ports.HostedUser{ID: "hosted-" + email, Email: email, Metadata: meta, CreatedAt: time.Now().UTC()}
	p.signUpAccounts[email] = u
	return u, nil
}

func (p *stubIdentityProvider) SignInWithPassword(_ context.Context, _, _ string) (*ports.HostedSession, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.signInSession, nil
}

func (p *stubIdentityProvider) OAuthURL(provider, state string) (string, error) {
	return "https://id.example.com/authorize?provider=" + provider + "&state=" + state, nil
}

func (p *stubIdentityProvider) GetUser(_ context.Context, accessToken string) (*ports.HostedUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.usersByToken[accessToken]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	clone := *u
	return &clone, nil
}

func (p *stubIdentityProvider) UpdateMetadata(_ context.Context, userID string, patch ports.UserMetadata) (*ports.HostedUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateCalls++
	if p.updateErr != nil {
		return nil, p.updateErr
	}
	for _, u := range p.usersByToken {
		if u.ID == userID {
			if patch.Role != "" {
				u.Metadata.Role = patch.Role
			}
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (p *stubIdentityProvider) ResendVerification(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resendEmails = append(p.resendEmails, email)
	return nil
}

func (p *stubIdentityProvider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutTokens = append(p.signOutTokens, accessToken)
	return nil
}
