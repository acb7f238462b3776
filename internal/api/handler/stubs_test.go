package handler

import (
	"context"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// stubAuthService records calls and returns canned results.
type stubAuthService struct {
	registerResult *ports.AuthResult
	registerErr    error
	loginResult    *ports.AuthResult
	loginErr       error
	loginInput     ports.LoginInput
	oauthStart     *ports.OAuthStart
	oauthErr       error
	resolveResult  *ports.AuthResult
	resolveRes     *domain.Resolution
	resolveErr     error
	resolveInput   ports.ResolveInput
	logoutSession  string
	logoutHosted   string
	verifyEmailErr error
	resendErr      error
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.registerResult, nil
}

func (s *stubAuthService) Login(_ context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	s.loginInput = in
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAuthService) StartOAuth(_ context.Context, provider, accountType string) (*ports.OAuthStart, error) {
	if s.oauthErr != nil {
		return nil, s.oauthErr
	}
	return s.oauthStart, nil
}

func (s *stubAuthService) Resolve(_ context.Context, in ports.ResolveInput) (*ports.AuthResult, *domain.Resolution, error) {
	s.resolveInput = in
	if s.resolveErr != nil {
		return nil, nil, s.resolveErr
	}
	return s.resolveResult, s.resolveRes, nil
}

func (s *stubAuthService) VerifyEmail(_ context.Context, username string) error {
	return s.verifyEmailErr
}

func (s *stubAuthService) ResendVerification(_ context.Context, email string) error {
	return s.resendErr
}

func (s *stubAuthService) Logout(_ context.Context, sessionToken, hostedToken string) error {
	s.logoutSession = sessionToken
	s.logoutHosted = hostedToken
	return nil
}

// stubDirectoryService covers the two directory-only handler paths.
type stubDirectoryService struct {
	verifyPinErr  error
	resetErr      error
	resetUsername string
	resetPin      string
	resetPassword string
}

func (s *stubDirectoryService) Register(context.Context, ports.RegisterInput) (*domain.Principal, *domain.Session, error) {
	return nil, nil, nil
}

func (s *stubDirectoryService) Login(context.Context, string, string) (*domain.Principal, *domain.Session, error) {
	return nil, nil, nil
}

func (s *stubDirectoryService) VerifyPin(_ context.Context, username, pin string) error {
	return s.verifyPinErr
}

func (s *stubDirectoryService) ResetPassword(_ context.Context, username, pin, newPassword string) error {
	s.resetUsername, s.resetPin, s.resetPassword = username, pin, newPassword
	return s.resetErr
}

func (s *stubDirectoryService) CurrentUser(context.Context, string) (*domain.Principal, error) {
	return nil, domain.ErrSessionExpired
}

func (s *stubDirectoryService) VerifyEmail(context.Context, string) error { return nil }

func (s *stubDirectoryService) Logout(context.Context, string) error { return nil }

// stubDispatcher captures enqueued events.
type stubDispatcher struct {
	events []ports.ResolveInput
}

func (d *stubDispatcher) Enqueue(in ports.ResolveInput) {
	d.events = append(d.events, in)
}
