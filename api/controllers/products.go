package controllers

import (
	"net/http"

	"github.com/keksoko/storefront/api/middleware"
	"github.com/keksoko/storefront/api/responses"
	"github.com/keksoko/storefront/api/validators"
	"github.com/keksoko/storefront/internal/catalog"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
	"github.com/keksoko/storefront/pkg/pagination"
)

type browserProvider interface {
	ForSession(sessionID string) (*catalog.Browser, error)
}

// Products runs a catalog query for the session's browse state. The
// query string fully describes the filters; the browser reconciles it
// against the previous state so facet changes land on page 1 and stale
// responses are discarded.
func Products(browsers browserProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if browsers == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "session missing"))
			return
		}

		filters, err := filtersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		browser, err := browsers.ForSession(sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "browse session"))
			return
		}

		page, err := browser.Update(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func filtersFromQuery(r *http.Request) (catalog.FilterState, error) {
	filters := catalog.DefaultFilters()
	query := r.URL.Query()

	filters.Search = validators.SanitizeString(query.Get("search"), 200)
	if category := validators.SanitizeString(query.Get("category"), 100); category != "" {
		filters.Category = category
	}
	if seller := validators.SanitizeString(query.Get("sellerId"), 100); seller != "" {
		filters.SellerID = seller
	}

	minPrice, err := validators.ParseQueryFloat(r, "minPrice")
	if err != nil {
		return catalog.FilterState{}, err
	}
	maxPrice, err := validators.ParseQueryFloat(r, "maxPrice")
	if err != nil {
		return catalog.FilterState{}, err
	}
	filters.PriceMin = minPrice
	filters.PriceMax = maxPrice

	switch stock := query.Get("stock"); stock {
	case "", string(catalog.StockAll):
		filters.Stock = catalog.StockAll
	case string(catalog.StockIn), string(catalog.StockOut):
		filters.Stock = catalog.StockFilter(stock)
	default:
		return catalog.FilterState{}, pkgerrors.New(pkgerrors.CodeValidation, "stock must be all, in or out").
			WithDetails(map[string]string{"field": "stock"})
	}

	minRating, err := validators.ParseQueryFloat(r, "minRating")
	if err != nil {
		return catalog.FilterState{}, err
	}
	if minRating != nil {
		if *minRating > 5 {
			return catalog.FilterState{}, pkgerrors.New(pkgerrors.CodeValidation, "minRating must be at most 5").
				WithDetails(map[string]string{"field": "minRating"})
		}
		filters.MinRating = *minRating
	}

	if sortBy := validators.SanitizeString(query.Get("sortBy"), 50); sortBy != "" {
		filters.SortBy = sortBy
	}
	if sortOrder := query.Get("sortOrder"); sortOrder == "asc" || sortOrder == "desc" {
		filters.SortOrder = sortOrder
	}

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000000)
	if err != nil {
		return catalog.FilterState{}, err
	}
	filters.Page = page

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return catalog.FilterState{}, err
	}
	filters.Limit = limit

	return filters, nil
}
