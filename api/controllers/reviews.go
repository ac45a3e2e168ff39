package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keksoko/storefront/api/middleware"
	"github.com/keksoko/storefront/api/responses"
	"github.com/keksoko/storefront/api/validators"
	reviewsvc "github.com/keksoko/storefront/internal/reviews"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
)

// ReviewState reports which review UI the viewer should get for a
// product.
func ReviewState(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		token := middleware.AuthTokenFromContext(r.Context())

		state, err := svc.State(r.Context(), productID, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

// ReviewSubmit relays a create or edit and returns the refreshed gate
// state.
func ReviewSubmit(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		token := middleware.AuthTokenFromContext(r.Context())

		var input reviewsvc.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Submit(r.Context(), productID, token, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}
