package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keksoko/storefront/api/middleware"
	"github.com/keksoko/storefront/api/responses"
	"github.com/keksoko/storefront/api/validators"
	checkoutsvc "github.com/keksoko/storefront/internal/checkout"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
)

// CheckoutSubmit validates the contact form, submits the order and
// starts payment polling. The response is accepted, not final; callers
// follow up on CheckoutStatus.
func CheckoutSubmit(svc checkoutsvc.Service, carts cartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var form checkoutsvc.Form
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		snapshot, err := svc.Submit(r.Context(), sessionID, store, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, snapshot)
	}
}

// CheckoutStatus reports where a submitted checkout currently stands.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id required"))
			return
		}

		snapshot, err := svc.Status(orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
