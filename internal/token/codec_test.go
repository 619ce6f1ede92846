package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"authgate/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec(config.AuthConfig{Secret: "secret", Issuer: "authgate", TokenTTL: ttl})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func TestIssueAndDecode(t *testing.T) {
	c := newTestCodec(t, 15*time.Minute)
	now := time.Unix(1700000000, 0).UTC()

	raw, err := c.Issue(now, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected token string")
	}

	claims, err := c.Decode(raw, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Login() != "alice" {
		t.Fatalf("unexpected subject: %q", claims.Login())
	}
	if !claims.ExpiresAt.After(now) {
		t.Fatalf("expected future expiry, got %v", claims.ExpiresAt)
	}
}

func TestDecode_ExpiredToken(t *testing.T) {
	c := newTestCodec(t, time.Minute)
	now := time.Unix(1700000000, 0).UTC()

	raw, err := c.Issue(now, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// TTL 1 minute, decoded 2 minutes later (past leeway too).
	_, err = c.Decode(raw, now.Add(2*time.Minute))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expiry to remain distinguishable, got %v", err)
	}
}

func TestDecode_TamperedPayload(t *testing.T) {
	c := newTestCodec(t, time.Minute)
	now := time.Unix(1700000000, 0).UTC()

	raw, err := c.Issue(now, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	// Flip one byte of the payload segment.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := c.Decode(tampered, now); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for tampered token, got %v", err)
	}
}

func TestDecode_WrongKey(t *testing.T) {
	c := newTestCodec(t, time.Minute)
	other, err := NewCodec(config.AuthConfig{Secret: "other", Issuer: "authgate", TokenTTL: time.Minute})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	now := time.Now().UTC()
	raw, err := other.Issue(now, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := c.Decode(raw, now); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong key, got %v", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	c := newTestCodec(t, time.Minute)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := c.Decode(raw, time.Now()); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", raw, err)
		}
	}
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	if _, err := NewCodec(config.AuthConfig{TokenTTL: time.Minute}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
