package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

// TokenManager issues the service's own HS256 tokens after a successful
// login or resolution. The auth middleware validates them on gated routes.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the principal identity and the strategy it
// was authenticated through.
func (m *TokenManager) Issue(p *domain.Principal, strategy string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      p.ID,
		"username": p.Username,
		"role":     p.Role,
		"strategy": strategy,
		"exp":      time.Now().Add(m.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}
