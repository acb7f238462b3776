// Package identity implements the credential store adapter against the
// hosted identity provider's REST API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// OAuth providers the marketplace supports.
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

const defaultHTTPTimeout = 10 * time.Second

// HostedProvider talks to the hosted identity provider over its REST
// surface: /auth/v1/signup, /auth/v1/token, /auth/v1/user,
// /auth/v1/admin/users/{id}, /auth/v1/resend, /auth/v1/logout,
// /auth/v1/authorize.
type HostedProvider struct {
	baseURL     string
	apiKey      string
	redirectURL string
	httpClient  *http.Client
}

// Config captures the settings for reaching the hosted provider.
type Config struct {
	BaseURL     string
	APIKey      string
	RedirectURL string
	Timeout     time.Duration
}

func NewHostedProvider(cfg Config) *HostedProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HostedProvider{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		redirectURL: cfg.RedirectURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

var _ ports.IdentityProvider = (*HostedProvider)(nil)

type hostedUserPayload struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	ConfirmedAt  string             `json:"email_confirmed_at,omitempty"`
	UserMetadata ports.UserMetadata `json:"user_metadata"`
	CreatedAt    time.Time          `json:"created_at"`
}

type tokenPayload struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int               `json:"expires_in"`
	User         hostedUserPayload `json:"user"`
}

// SignUp creates a hosted account carrying the profile metadata.
func (p *HostedProvider) SignUp(ctx context.Context, email, password string, meta ports.UserMetadata) (*ports.HostedUser, error) {
	body := map[string]any{"email": email, "password": password, "data": meta}

	var out hostedUserPayload
	if err := p.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &out); err != nil {
		return nil, err
	}
	return toHostedUser(out), nil
}

// SignInWithPassword performs the password grant.
func (p *HostedProvider) SignInWithPassword(ctx context.Context, email, password string) (*ports.HostedSession, error) {
	body := map[string]any{"email": email, "password": password}

	var out tokenPayload
	if err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &out); err != nil {
		return nil, err
	}

	return &ports.HostedSession{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(out.ExpiresIn) * time.Second),
		User:         toHostedUser(out.User),
	}, nil
}

// OAuthURL builds the authorization URL for the browser redirect.
func (p *HostedProvider) OAuthURL(provider, state string) (string, error) {
	if provider != ProviderGoogle && provider != ProviderApple {
		return "", fmt.Errorf("%w: unsupported oauth provider %q", domain.ErrInvalidFormat, provider)
	}

	params := url.Values{
		"provider":    {provider},
		"redirect_to": {p.redirectURL},
		"state":       {state},
	}
	return fmt.Sprintf("%s/auth/v1/authorize?%s", p.baseURL, params.Encode()), nil
}

// GetUser reads the user behind an access token. Side-effect-free.
func (p *HostedProvider) GetUser(ctx context.Context, accessToken string) (*ports.HostedUser, error) {
	var out hostedUserPayload
	if err := p.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return toHostedUser(out), nil
}

// UpdateMetadata merges patch into the stored user record.
func (p *HostedProvider) UpdateMetadata(ctx context.Context, userID string, patch ports.UserMetadata) (*ports.HostedUser, error) {
	body := map[string]any{"user_metadata": patch}

	var out hostedUserPayload
	if err := p.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(userID), "", body, &out); err != nil {
		return nil, err
	}
	return toHostedUser(out), nil
}

// ResendVerification asks the provider to re-send the signup confirmation.
func (p *HostedProvider) ResendVerification(ctx context.Context, email string) error {
	body := map[string]any{"type": "signup", "email": email}
	return p.do(ctx, http.MethodPost, "/auth/v1/resend", "", body, nil)
}

// SignOut invalidates the hosted session globally.
func (p *HostedProvider) SignOut(ctx context.Context, accessToken string) error {
	return p.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// do issues one request against the provider and decodes the response.
// Known failure statuses are mapped to domain errors; everything else is
// wrapped as a provider error.
func (p *HostedProvider) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("hosted: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("hosted: create request: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hosted: %s %s: %w: %v", method, path, domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return mapStatus(resp.StatusCode, method, path, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hosted: decode response: %w", err)
	}
	return nil
}

func mapStatus(status int, method, path string, raw []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrInvalidCredentials
	case http.StatusNotFound:
		return domain.ErrUserNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrDuplicateAccount
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidFormat, string(raw))
	}
	return fmt.Errorf("hosted: %s %s failed (%d): %w", method, path, status, domain.ErrProvider)
}

func toHostedUser(p hostedUserPayload) *ports.HostedUser {
	return &ports.HostedUser{
		ID:            p.ID,
		Email:         p.Email,
		EmailVerified: p.ConfirmedAt != "",
		Metadata:      p.UserMetadata,
		CreatedAt:     p.CreatedAt,
	}
}
