package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/keksoko/storefront/internal/upstream"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
)

type lister interface {
	ListProducts(ctx context.Context, query url.Values) (*upstream.ProductPage, error)
}

// Browser is one buyer's catalog browsing session: the current filter
// state plus the most recently applied result page. Every fetch is
// tagged with a generation so a slow response that was superseded by a
// later filter change is discarded instead of overwriting fresher
// results.
type Browser struct {
	mu      sync.Mutex
	filters FilterState
	gen     uint64
	results *upstream.ProductPage

	products lister
	logg     *logger.Logger
}

// NewBrowser builds a browse session starting at the default filters.
func NewBrowser(products lister, logg *logger.Logger) (*Browser, error) {
	if products == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &Browser{
		filters:  DefaultFilters(),
		products: products,
		logg:     logg,
	}, nil
}

// Filters returns the current filter state.
func (b *Browser) Filters() FilterState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

// Results returns the most recently applied page, or nil before the
// first successful fetch.
func (b *Browser) Results() *upstream.ProductPage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results
}

// Update reconciles an incoming filter state against the current one
// and refetches once. A facet change resets pagination to page 1
// unless the request also moved the page; a page-only change leaves
// the facets untouched.
func (b *Browser) Update(ctx context.Context, incoming FilterState) (*upstream.ProductPage, error) {
	return b.apply(ctx, func(f *FilterState) {
		if !f.facetsEqual(incoming) {
			samePage := incoming.Page == f.Page
			*f = incoming
			if samePage {
				f.Page = 1
			} else {
				f.SetPage(incoming.Page)
			}
			return
		}
		f.SetPage(incoming.Page)
	})
}

// Search sets the free-text query and refetches from page 1.
func (b *Browser) Search(ctx context.Context, query string) (*upstream.ProductPage, error) {
	return b.apply(ctx, func(f *FilterState) { f.SetSearch(query) })
}

// Paginate moves to the given page without touching any facet.
func (b *Browser) Paginate(ctx context.Context, page int) (*upstream.ProductPage, error) {
	return b.apply(ctx, func(f *FilterState) { f.SetPage(page) })
}

// ClearFilters restores every facet to its default atomically,
// triggering exactly one refetch.
func (b *Browser) ClearFilters(ctx context.Context) (*upstream.ProductPage, error) {
	return b.apply(ctx, func(f *FilterState) { f.Reset() })
}

// Refresh re-runs the current query without changing anything.
func (b *Browser) Refresh(ctx context.Context) (*upstream.ProductPage, error) {
	return b.apply(ctx, func(f *FilterState) {})
}

func (b *Browser) apply(ctx context.Context, mutate func(*FilterState)) (*upstream.ProductPage, error) {
	b.mu.Lock()
	mutate(&b.filters)
	b.gen++
	gen := b.gen
	values := b.filters.Values()
	b.mu.Unlock()

	page, err := b.products.ListProducts(ctx, values)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		// A later filter change superseded this fetch. Serve whatever
		// the winning request applied.
		if b.logg != nil {
			b.logg.Debug(ctx, "discarding stale catalog response")
		}
		if b.results != nil {
			return b.results, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "catalog query superseded by a newer one")
	}
	if err != nil {
		return nil, err
	}
	b.results = page
	return page, nil
}
