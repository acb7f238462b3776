package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

func newTestProvider(handler http.HandlerFunc) (*HostedProvider, *httptest.Server) {
	srv := httptest.NewServer(handler)
	p := NewHostedProvider(Config{
		BaseURL:     srv.URL,
		APIKey:      "anon-key",
		RedirectURL: "https://app.example.com/callback",
	})
	return p, srv
}

func TestHostedProvider_SignInWithPassword(t *testing.T) {
	var gotPath, gotAPIKey string
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "carol@example.com" || body["password"] != "hostedpw" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "tok-1",
			"refresh_token": "ref-1",
			"expires_in":    3600,
			"user": map[string]any{
				"id":                 "hosted-1",
				"email":              "carol@example.com",
				"email_confirmed_at": "2026-01-01T00:00:00Z",
				"user_metadata":      map[string]string{"role": "vendor"},
			},
		})
	})
	defer srv.Close()

	session, err := p.SignInWithPassword(context.Background(), "carol@example.com", "hostedpw")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if gotPath != "/auth/v1/token?grant_type=password" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAPIKey != "anon-key" {
		t.Fatalf("api key header missing")
	}
	if session.AccessToken != "tok-1" || session.User.ID != "hosted-1" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if !session.User.EmailVerified || session.User.Metadata.Role != "vendor" {
		t.Fatalf("unexpected user: %+v", session.User)
	}
}

func TestHostedProvider_GetUser_SendsBearer(t *testing.T) {
	var gotAuth string
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "hosted-1", "email": "carol@example.com"})
	})
	defer srv.Close()

	user, err := p.GetUser(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected user token as bearer, got %q", gotAuth)
	}
	if user.EmailVerified {
		t.Fatalf("unconfirmed user reported as verified")
	}
}

func TestHostedProvider_UpdateMetadata(t *testing.T) {
	var gotMethod, gotPath string
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		var body struct {
			UserMetadata ports.UserMetadata `json:"user_metadata"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "hosted-1",
			"user_metadata": body.UserMetadata,
		})
	})
	defer srv.Close()

	user, err := p.UpdateMetadata(context.Background(), "hosted-1", ports.UserMetadata{Role: "client"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/auth/v1/admin/users/hosted-1" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if user.Metadata.Role != "client" {
		t.Fatalf("unexpected metadata: %+v", user.Metadata)
	}
}

func TestHostedProvider_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrInvalidCredentials},
		{http.StatusForbidden, domain.ErrInvalidCredentials},
		{http.StatusNotFound, domain.ErrUserNotFound},
		{http.StatusConflict, domain.ErrDuplicateAccount},
		{http.StatusUnprocessableEntity, domain.ErrDuplicateAccount},
		{http.StatusBadRequest, domain.ErrInvalidFormat},
		{http.StatusBadGateway, domain.ErrProvider},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			p, srv := newTestProvider(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})
			defer srv.Close()

			_, err := p.GetUser(context.Background(), "tok-1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
			}
		})
	}
}

func TestHostedProvider_OAuthURL(t *testing.T) {
	p := NewHostedProvider(Config{
		BaseURL:     "https://id.example.com",
		RedirectURL: "https://app.example.com/callback",
	})

	got, err := p.OAuthURL(ProviderGoogle, "state-1")
	if err != nil {
		t.Fatalf("oauth url failed: %v", err)
	}
	if !strings.HasPrefix(got, "https://id.example.com/auth/v1/authorize?") {
		t.Fatalf("unexpected url: %s", got)
	}
	for _, part := range []string{"provider=google", "state=state-1", "redirect_to="} {
		if !strings.Contains(got, part) {
			t.Fatalf("url missing %q: %s", part, got)
		}
	}

	if _, err := p.OAuthURL("github", "state-1"); !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for unsupported provider, got %v", err)
	}
}

func TestHostedProvider_SignUp(t *testing.T) {
	p, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Email string             `json:"email"`
			Data  ports.UserMetadata `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "hosted-2",
			"email":         body.Email,
			"user_metadata": body.Data,
		})
	})
	defer srv.Close()

	user, err := p.SignUp(context.Background(), "dave@example.com", "secret1", ports.UserMetadata{Role: "vendor", CompanyName: "Dave Co"})
	if err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}
	if user.ID != "hosted-2" || user.Metadata.CompanyName != "Dave Co" {
		t.Fatalf("unexpected user: %+v", user)
	}
}
