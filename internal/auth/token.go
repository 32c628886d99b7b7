package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/davegitonga/pricehub/internal/domain/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims travel inside the signed token. The jti is the access_tokens row id;
// the row, not the JWT, is authoritative for expiry and revocation.
type Claims struct {
	UserID string `json:"sub"`
	Scope  string `json:"scope"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a token manager. ttl == 0 issues non-expiring tokens.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue mints a plaintext token for userID and returns the row to persist.
// The plaintext is shown to the caller once and never stored.
func (m *Manager) Issue(userID, scope string) (string, token.Token, error) {
	if scope == "" {
		scope = token.ScopeAll
	}

	now := time.Now().UTC()
	jti := uuid.NewString()

	var expiresAt *time.Time

	registered := jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(now),
		Subject:  userID,
	}

	if m.ttl > 0 {
		exp := now.Add(m.ttl)
		expiresAt = &exp
		registered.ExpiresAt = jwt.NewNumericDate(exp)
	}

	claims := Claims{
		UserID:           userID,
		Scope:            scope,
		JTI:              jti,
		RegisteredClaims: registered,
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)

	if err != nil {
		return "", token.Token{}, err
	}

	row := token.Token{
		ID:        jti,
		UserID:    userID,
		TokenHash: m.HashToken(raw),
		Scope:     scope,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	return raw, row, nil
}

// Parse checks the signature and shape of a presented token. Expiry is
// deliberately not validated here; the middleware decides that from the
// stored row so an expired token can still be revoked eagerly.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)

	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.JTI == "" {
		return nil, errors.New("missing jti")
	}

	return claims, nil
}

// Deterministic HMAC hash (server-side pepper = signing secret bytes).
// Store this in DB (never store the raw token).
func (m *Manager) HashToken(raw string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
