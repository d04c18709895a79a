package token

import (
	"testing"
	"time"

	apperrors "github.com/louisbranch/feastly/internal/platform/errors"
)

var testSecret = []byte("unit-test-secret")

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestMintVerifyRoundTrip(t *testing.T) {
	issued := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cfg := Config{Secret: testSecret, TTL: time.Hour, Now: fixedClock(issued)}

	value, err := Mint(cfg, 42, "Alice")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := Verify(cfg, value)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id = %d, want 42", claims.UserID)
	}
	if claims.Name != "Alice" {
		t.Fatalf("name = %q, want Alice", claims.Name)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	value, err := Mint(Config{Secret: testSecret, TTL: time.Minute, Now: fixedClock(issued)}, 7, "Bob")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	later := Config{Secret: testSecret, Now: fixedClock(issued.Add(2 * time.Minute))}
	_, err = Verify(later, value)
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	value, err := Mint(Config{Secret: testSecret, TTL: time.Hour}, 7, "Bob")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = Verify(Config{Secret: []byte("other-secret")}, value)
	if apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "   ", "not-a-token"} {
		_, err := Verify(Config{Secret: testSecret}, value)
		if apperrors.KindOf(err) != apperrors.KindUnauthorized {
			t.Fatalf("Verify(%q) err = %v, want unauthorized", value, err)
		}
	}
}

func TestMintRequiresSecretAndUser(t *testing.T) {
	if _, err := Mint(Config{}, 1, "x"); err == nil {
		t.Fatal("expected missing secret to be rejected")
	}
	if _, err := Mint(Config{Secret: testSecret}, 0, "x"); err == nil {
		t.Fatal("expected missing user id to be rejected")
	}
}
