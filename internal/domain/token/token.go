package token

import (
	"errors"
	"time"
)

// Token is the persisted side of an issued access token. The plaintext is
// returned exactly once at issuance; only TokenHash is stored.
type Token struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	Scope     string     `json:"scope"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	RevokedAt *time.Time `json:"-"`
}

var ErrNotFound = errors.New("token not found")

const ScopeAll = "all"

func (t Token) Revoked() bool {
	return t.RevokedAt != nil
}

func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Usable is the single invariant gating authentication: not revoked and
// (non-expiring or still in the future).
func (t Token) Usable(now time.Time) bool {
	return !t.Revoked() && !t.Expired(now)
}
