package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, sessionID, err := NewAccessToken("secret", "issuer", time.Minute, Claims{
		UserID:   "123456",
		Username: "demo",
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken("secret", "issuer", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if claims.UserID != "123456" || claims.Username != "demo" || sessionID == "" || claims.SessionID() != sessionID {
		t.Fatalf("unexpected claims")
	}
}

func TestParseTokenRejects(t *testing.T) {
	token, _, err := NewAccessToken("secret", "issuer", time.Minute, Claims{UserID: "123456"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("other-secret", "issuer", token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
	if _, err := ParseToken("secret", "other-issuer", token); err == nil {
		t.Fatalf("expected issuer mismatch")
	}

	expired, _, err := NewAccessToken("secret", "issuer", -time.Minute, Claims{UserID: "123456"})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", "issuer", expired); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
	if _, err := ParseToken("secret", "issuer", "not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
