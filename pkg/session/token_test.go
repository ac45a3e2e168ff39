package session

import (
	"strings"
	"testing"
	"time"

	"github.com/keksoko/storefront/pkg/config"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:   "secret",
		Issuer:   "keksoko-storefront",
		TTLHours: 24,
	}
}

func TestMintAndParse(t *testing.T) {
	cfg := testConfig()
	now := time.Now().UTC()
	sessionID := NewSessionID()

	token, err := Mint(cfg, now, sessionID)
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	got, err := Parse(cfg, token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}
	if got != sessionID {
		t.Fatalf("expected session id %s, got %s", sessionID, got)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now(), NewSessionID())
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := Parse(other, token); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now(), NewSessionID())
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := Parse(other, token); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := testConfig()
	past := time.Now().Add(-48 * time.Hour)
	token, err := Mint(cfg, past, NewSessionID())
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	if _, err := Parse(cfg, token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestMintValidatesInputs(t *testing.T) {
	cfg := testConfig()

	if _, err := Mint(config.SessionConfig{Issuer: "x", TTLHours: 1}, time.Now(), "s"); err == nil || !strings.Contains(err.Error(), "secret") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
	if _, err := Mint(cfg, time.Now(), "  "); err == nil {
		t.Fatal("expected blank session id to fail")
	}
}
