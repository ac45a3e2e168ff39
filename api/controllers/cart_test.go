package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/keksoko/storefront/api/middleware"
	cartsvc "github.com/keksoko/storefront/internal/cart"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/types"
)

type stubCartProvider struct {
	stores map[string]*cartsvc.Store
	err    error
}

func newStubCartProvider(t *testing.T) *stubCartProvider {
	t.Helper()
	return &stubCartProvider{stores: map[string]*cartsvc.Store{}}
}

func (p *stubCartProvider) ForSession(ctx context.Context, sessionID string) (*cartsvc.Store, error) {
	if p.err != nil {
		return nil, p.err
	}
	if store, ok := p.stores[sessionID]; ok {
		return store, nil
	}
	store, err := cartsvc.NewStore(cartsvc.NewMemoryStorage(), nil)
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	p.stores[sessionID] = store
	return store, nil
}

func withSession(r *http.Request, sessionID string) *http.Request {
	return r.WithContext(middleware.WithSessionID(r.Context(), sessionID))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeCartView(t *testing.T, resp *httptest.ResponseRecorder) CartView {
	t.Helper()
	var envelope struct {
		Data CartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestCartFetchEmpty(t *testing.T) {
	handler := CartFetch(newStubCartProvider(t), nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	view := decodeCartView(t, resp)
	if len(view.Items) != 0 || view.Count != 0 {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}

func TestCartFetchWithoutSession(t *testing.T) {
	handler := CartFetch(newStubCartProvider(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCartAddItem(t *testing.T) {
	provider := newStubCartProvider(t)
	handler := CartAddItem(provider, nil)

	body := `{"id":"p1","name":"Red Velvet","price":1800,"seller":"Amani Bakery","inStock":true}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	view := decodeCartView(t, resp)
	if view.Count != 1 || view.Seller != "Amani Bakery" {
		t.Fatalf("unexpected cart view: %+v", view)
	}
}

func TestCartAddItemMissingFields(t *testing.T) {
	handler := CartAddItem(newStubCartProvider(t), nil)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"price":5}`)), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemSellerMismatch(t *testing.T) {
	provider := newStubCartProvider(t)
	addHandler := CartAddItem(provider, nil)

	first := `{"id":"p1","name":"Red Velvet","price":1800,"seller":"Amani Bakery"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(first)), "sess-1")
	addHandler.ServeHTTP(httptest.NewRecorder(), req)

	second := `{"id":"p2","name":"Black Forest","price":2500,"seller":"Other Cakes"}`
	req = withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(second)), "sess-1")
	resp := httptest.NewRecorder()
	addHandler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if !strings.Contains(envelope.Error.Message, "Amani Bakery") || !strings.Contains(envelope.Error.Message, "Other Cakes") {
		t.Fatalf("message should name both sellers: %q", envelope.Error.Message)
	}
}

func TestCartUpdateQuantityZeroRemoves(t *testing.T) {
	provider := newStubCartProvider(t)

	add := `{"id":"p1","name":"Red Velvet","price":1800,"seller":"Amani Bakery"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(add)), "sess-1")
	CartAddItem(provider, nil).ServeHTTP(httptest.NewRecorder(), req)

	req = withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/p1", strings.NewReader(`{"quantity":0}`)), "sess-1")
	req = withURLParam(req, "productId", "p1")
	resp := httptest.NewRecorder()
	CartUpdateQuantity(provider, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	view := decodeCartView(t, resp)
	if len(view.Items) != 0 {
		t.Fatalf("quantity 0 should remove the line, got %+v", view.Items)
	}
}

func TestCartClear(t *testing.T) {
	provider := newStubCartProvider(t)

	add := `{"id":"p1","name":"Red Velvet","price":1800,"seller":"Amani Bakery"}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(add)), "sess-1")
	CartAddItem(provider, nil).ServeHTTP(httptest.NewRecorder(), req)

	req = withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), "sess-1")
	resp := httptest.NewRecorder()
	CartClear(provider, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if view := decodeCartView(t, resp); view.Count != 0 {
		t.Fatalf("expected cleared cart, got %+v", view)
	}
}

func TestCartProviderFailure(t *testing.T) {
	provider := newStubCartProvider(t)
	provider.err = pkgerrors.New(pkgerrors.CodeDependency, "redis unreachable")

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "sess-1")
	resp := httptest.NewRecorder()
	CartFetch(provider, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
}
