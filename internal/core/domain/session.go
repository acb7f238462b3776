package domain

import "time"

// FallbackSessionTTL is the lifetime of sessions issued by the local
// directory. Hosted-provider sessions carry their own expiry.
const FallbackSessionTTL = 7 * 24 * time.Hour

// Auth strategies a session can originate from.
const (
	StrategyHosted    = "hosted"
	StrategyDirectory = "directory"
	StrategyBypass    = "bypass"
)

// Session is an issued credential. Invariant: a session is either absent
// or has a non-expired ExpiresAt.
type Session struct {
	Token       string    `json:"token"`
	PrincipalID string    `json:"principal_id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Strategy    string    `json:"strategy"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
