package auth_test

import (
	"testing"
	"time"

	"github.com/davegitonga/pricehub/internal/auth"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	raw, row, err := m.Issue("user-1", "all")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if raw == "" {
		t.Fatal("empty plaintext token")
	}

	if row.ExpiresAt == nil {
		t.Fatal("expiring manager produced a row without expires_at")
	}

	claims, err := m.Parse(raw)

	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Fatalf("got sub %q, want user-1", claims.UserID)
	}

	if claims.JTI != row.ID {
		t.Fatalf("jti %q does not match row id %q", claims.JTI, row.ID)
	}

	if row.TokenHash != m.HashToken(raw) {
		t.Fatal("stored hash does not match the plaintext hash")
	}

	if row.TokenHash == raw {
		t.Fatal("row stores the plaintext token")
	}
}

func TestIssueZeroTTLNeverExpires(t *testing.T) {
	m := auth.NewManager("test-secret", 0)

	_, row, err := m.Issue("user-1", "")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if row.ExpiresAt != nil {
		t.Fatalf("zero ttl should not set expires_at, got %v", row.ExpiresAt)
	}

	if row.Scope != "all" {
		t.Fatalf("empty scope should default to all, got %q", row.Scope)
	}
}

// An expired token must still parse so its jti can be revoked; the stored row
// is what decides expiry.
func TestParseAcceptsExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Nanosecond)

	raw, row, err := m.Issue("user-1", "all")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if !row.Expired(time.Now().UTC()) {
		t.Fatal("row should already be expired")
	}

	claims, err := m.Parse(raw)

	if err != nil {
		t.Fatalf("expired token failed to parse: %v", err)
	}

	if claims.JTI != row.ID {
		t.Fatalf("jti %q does not match row id %q", claims.JTI, row.ID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	other := auth.NewManager("secret-b", time.Hour)

	raw, _, err := issuer.Issue("user-1", "all")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := other.Parse(raw); err == nil {
		t.Fatal("token signed with a different secret parsed cleanly")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	raw, _, err := m.Issue("user-1", "all")

	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := raw + "x"

	if _, err := m.Parse(tampered); err == nil {
		t.Fatal("tampered token parsed cleanly")
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	if m.HashToken("abc") != m.HashToken("abc") {
		t.Fatal("hash is not deterministic")
	}

	if m.HashToken("abc") == m.HashToken("abd") {
		t.Fatal("different tokens collided")
	}
}
