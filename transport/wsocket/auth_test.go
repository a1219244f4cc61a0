package wsocket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func signToken(t *testing.T, secret string, subject string, expires time.Time) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(map[string]any{
		"sub": subject,
		"exp": expires.Unix(),
		"iat": time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	headerPayload := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(headerPayload))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return headerPayload + "." + signature
}

func TestHMACAuthenticatorAcceptsValidToken(t *testing.T) {
	auth, err := NewHMACAuthenticator("shared-secret", time.Second)
	if err != nil {
		t.Fatalf("NewHMACAuthenticator: %v", err)
	}
	token := signToken(t, "shared-secret", "peer-a", time.Now().Add(time.Minute))

	req := httptest.NewRequest("GET", "/ws?auth_token="+token, nil)
	peer, err := auth.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if peer != "peer-a" {
		t.Fatalf("expected peer-a, got %q", peer)
	}
}

func TestHMACAuthenticatorRejectsBadSignature(t *testing.T) {
	auth, err := NewHMACAuthenticator("shared-secret", time.Second)
	if err != nil {
		t.Fatalf("NewHMACAuthenticator: %v", err)
	}
	token := signToken(t, "wrong-secret", "peer-a", time.Now().Add(time.Minute))

	req := httptest.NewRequest("GET", "/ws?auth_token="+token, nil)
	if _, err := auth.Authenticate(req); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACAuthenticatorRejectsExpiredToken(t *testing.T) {
	auth, err := NewHMACAuthenticator("shared-secret", 0)
	if err != nil {
		t.Fatalf("NewHMACAuthenticator: %v", err)
	}
	token := signToken(t, "shared-secret", "peer-a", time.Now().Add(-time.Minute))

	req := httptest.NewRequest("GET", "/ws?auth_token="+token, nil)
	if _, err := auth.Authenticate(req); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestAllowAllReadsPeerFromQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws?peer=client-a", nil)
	peer, err := (AllowAll{}).Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if peer != "client-a" {
		t.Fatalf("expected client-a, got %q", peer)
	}
}
