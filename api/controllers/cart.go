package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/keksoko/storefront/api/middleware"
	"github.com/keksoko/storefront/api/responses"
	"github.com/keksoko/storefront/api/validators"
	cartsvc "github.com/keksoko/storefront/internal/cart"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
)

type cartProvider interface {
	ForSession(ctx context.Context, sessionID string) (*cartsvc.Store, error)
}

// AddItemRequest is a line item candidate posted to the cart.
type AddItemRequest struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Seller        string   `json:"seller" validate:"required"`
	InStock       bool     `json:"inStock"`
	FreeShipping  bool     `json:"freeShipping,omitempty"`
}

// UpdateQuantityRequest sets a line's quantity to an absolute value.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart plus its derived aggregates.
type CartView struct {
	Items  []cartsvc.LineItem `json:"items"`
	Total  decimal.Decimal    `json:"total"`
	Count  int                `json:"count"`
	Seller string             `json:"seller,omitempty"`
}

func newCartView(store *cartsvc.Store) CartView {
	items := store.Items()
	if items == nil {
		items = []cartsvc.LineItem{}
	}
	return CartView{
		Items:  items,
		Total:  store.Total(),
		Count:  store.Count(),
		Seller: store.CurrentSeller(),
	}
}

// CartFetch returns the session's cart with derived totals.
func CartFetch(carts cartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartAddItem adds a product to the cart. A seller mismatch comes back
// as a conflict naming both sellers, with the cart untouched.
func CartAddItem(carts cartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := store.Add(r.Context(), cartsvc.Candidate{
			ID:            payload.ID,
			Name:          validators.SanitizeString(payload.Name, 200),
			Price:         payload.Price,
			OriginalPrice: payload.OriginalPrice,
			Image:         payload.Image,
			Seller:        validators.SanitizeString(payload.Seller, 200),
			InStock:       payload.InStock,
			FreeShipping:  payload.FreeShipping,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Success {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeConflict, result.Message).
					WithDetails(map[string]string{"currentSeller": store.CurrentSeller()}))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(store))
	}
}

// CartUpdateQuantity sets a line's quantity; zero or below removes it.
func CartUpdateQuantity(carts cartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.UpdateQuantity(r.Context(), productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartRemoveItem deletes one line from the cart.
func CartRemoveItem(carts cartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		if err := store.Remove(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartClear empties the cart entirely.
func CartClear(carts cartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(store))
	}
}

func sessionCart(r *http.Request, carts cartProvider) (*cartsvc.Store, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart provider unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "session missing")
	}
	store, err := carts.ForSession(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	return store, nil
}
