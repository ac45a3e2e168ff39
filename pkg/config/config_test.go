package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if got := cfg.Checkout.PollInterval; got != 3*time.Second {
		t.Fatalf("expected default poll interval 3s, got %v", got)
	}
	if got := cfg.Checkout.PollTimeout; got != 5*time.Minute {
		t.Fatalf("expected default poll timeout 5m, got %v", got)
	}
	if got := cfg.Session.TTL(); got != 720*time.Hour {
		t.Fatalf("expected default session ttl 720h, got %v", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_PhonePattern(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	re := cfg.Checkout.PhoneRegexp()
	if !re.MatchString("0712345678") {
		t.Fatalf("expected default pattern to accept 0712345678")
	}
	if re.MatchString("123456") {
		t.Fatalf("expected default pattern to reject 123456")
	}

	t.Setenv(EnvCheckoutPhonePattern, "^\\+256[0-9]{9}$")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() with custom pattern returned error: %v", err)
	}
	if !cfg.Checkout.PhoneRegexp().MatchString("+256712345678") {
		t.Fatalf("expected custom pattern to accept +256712345678")
	}
}

func TestLoad_InvalidPhonePattern(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCheckoutPhonePattern, "([")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid phone pattern to return an error")
	}
}

func TestLoad_PollTimeoutMustExceedInterval(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCheckoutPollInterval, "10s")
	t.Setenv(EnvCheckoutPollTimeout, "5s")

	if _, err := Load(); err == nil {
		t.Fatal("expected poll timeout below interval to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvSessionSecret, "secret")
	t.Setenv(EnvUpstreamBaseURL, "http://localhost:4000")
	t.Setenv(EnvCheckoutPollInterval, "3s")
	t.Setenv(EnvCheckoutPollTimeout, "5m")
	t.Setenv(EnvCheckoutPhonePattern, "^0[17][0-9]{8}$")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
