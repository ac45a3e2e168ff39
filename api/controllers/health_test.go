package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keksoko/storefront/pkg/config"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	handler := HealthLive(healthConfig())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get(envHeader) != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get(envHeader))
	}
}

func TestHealthReadyAllDependenciesUp(t *testing.T) {
	handler := HealthReady(healthConfig(), nil,
		Dependency{Name: "redis", Pinger: stubPinger{}},
		Dependency{Name: "marketplace", Pinger: stubPinger{}},
	)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthReadyAggregatesFailures(t *testing.T) {
	handler := HealthReady(healthConfig(), nil,
		Dependency{Name: "redis", Pinger: stubPinger{err: errors.New("connection refused")}},
		Dependency{Name: "marketplace", Pinger: stubPinger{err: errors.New("timeout")}},
	)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "SERVICE_UNAVAILABLE") {
		t.Fatalf("expected unavailable code in body: %s", resp.Body.String())
	}
}
