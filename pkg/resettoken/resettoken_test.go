package resettoken

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	SetSecret("reset-test-secret")

	token := Generate("user-1", "reset@test.com")
	if token == "" {
		t.Fatal("expected a token")
	}

	tok, err := Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if tok.UserID != "user-1" || tok.Email != "reset@test.com" {
		t.Errorf("unexpected claims: %+v", tok)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	SetSecret("reset-test-secret")

	token := Generate("user-2", "once@test.com")

	if _, err := Consume(token); err != nil {
		t.Fatalf("first Consume failed: %v", err)
	}
	if _, err := Consume(token); err == nil {
		t.Fatal("expected the second Consume to fail")
	}
	if _, err := Validate(token); err == nil {
		t.Fatal("a consumed token must no longer validate")
	}
}

func TestValidateRejectsTampering(t *testing.T) {
	SetSecret("reset-test-secret")

	token := Generate("user-3", "tamper@test.com")

	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		t.Fatalf("unexpected token shape %q", token)
	}

	// Swap the payload for one with a different user but keep the
	// original signature.
	forged := ResetToken{UserID: "attacker", Email: "tamper@test.com", ExpiresAt: time.Now().Add(time.Hour).Unix(), Nonce: "00"}
	data, _ := json.Marshal(forged)
	tampered := base64.RawURLEncoding.EncodeToString(data) + "." + parts[1]

	if _, err := Validate(tampered); err == nil {
		t.Fatal("expected a forged payload to fail signature verification")
	}

	if _, err := Validate("no-separator"); err == nil {
		t.Fatal("expected a malformed token to fail")
	}
	if _, err := Validate("!!!." + parts[1]); err == nil {
		t.Fatal("expected bad base64 to fail")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	SetSecret("reset-test-secret")

	expired := ResetToken{UserID: "user-4", Email: "old@test.com", ExpiresAt: time.Now().Add(-time.Minute).Unix(), Nonce: "00"}
	data, err := json.Marshal(expired)
	if err != nil {
		t.Fatalf("marshaling token: %v", err)
	}
	token := base64.RawURLEncoding.EncodeToString(data) + "." + sign(data)

	if _, err := Validate(token); err == nil {
		t.Fatal("expected an expired token to fail")
	}
}
