package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keksoko/storefront/pkg/config"
)

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret-test-secret-test-1234",
		Issuer:     "keksoko-storefront",
		TTLHours:   24,
		CookieName: "keksoko_session",
	}
}

func captureSession(t *testing.T) (http.Handler, *string, *string) {
	t.Helper()
	sessionID := new(string)
	authToken := new(string)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sessionID = SessionIDFromContext(r.Context())
		*authToken = AuthTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return Session(sessionConfig(), nil)(inner), sessionID, authToken
}

func TestSessionMintsCookieForNewVisitor(t *testing.T) {
	handler, sessionID, _ := captureSession(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if *sessionID == "" {
		t.Fatal("expected a session id to be assigned")
	}

	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "keksoko_session" {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	handler, sessionID, _ := captureSession(t)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	firstID := *sessionID
	cookie := first.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(cookie)
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	if *sessionID != firstID {
		t.Fatalf("expected session to survive, got %q then %q", firstID, *sessionID)
	}
	if len(second.Result().Cookies()) != 0 {
		t.Fatal("no new cookie should be minted for a valid session")
	}
}

func TestSessionReplacesGarbageCookie(t *testing.T) {
	handler, sessionID, _ := captureSession(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "keksoko_session", Value: "not-a-token"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if *sessionID == "" {
		t.Fatal("expected a replacement session id")
	}
	if len(resp.Result().Cookies()) != 1 {
		t.Fatal("expected a replacement cookie")
	}
}

func TestSessionForwardsBearerToken(t *testing.T) {
	handler, _, authToken := captureSession(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/p1/review", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if *authToken != "token-abc" {
		t.Fatalf("expected bearer token in context, got %q", *authToken)
	}
}
