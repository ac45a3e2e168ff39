package catalog

import (
	"net/url"
	"strconv"

	"github.com/keksoko/storefront/pkg/pagination"
)

// StockFilter narrows results by availability.
type StockFilter string

const (
	StockAll StockFilter = "all"
	StockIn  StockFilter = "in"
	StockOut StockFilter = "out"
)

// AllSellers and AllCategories are the unfiltered facet values.
const (
	AllSellers    = "all"
	AllCategories = "all"
)

// Default sort shows newest listings first.
const (
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

// FilterState is the full set of catalog facets plus the current page.
// Facet mutations reset the page to 1 so a narrower result set cannot
// land on an out-of-range page; SetPage leaves the facets alone.
type FilterState struct {
	Search    string
	Category  string
	PriceMin  *float64
	PriceMax  *float64
	Stock     StockFilter
	MinRating float64
	SellerID  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// DefaultFilters is the documented starting point for a browse session.
func DefaultFilters() FilterState {
	return FilterState{
		Category:  AllCategories,
		Stock:     StockAll,
		SellerID:  AllSellers,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
		Page:      1,
		Limit:     pagination.DefaultLimit,
	}
}

func (f *FilterState) SetSearch(search string) {
	f.Search = search
	f.Page = 1
}

func (f *FilterState) SetCategory(category string) {
	if category == "" {
		category = AllCategories
	}
	f.Category = category
	f.Page = 1
}

func (f *FilterState) SetPriceRange(min, max *float64) {
	f.PriceMin = min
	f.PriceMax = max
	f.Page = 1
}

func (f *FilterState) SetStock(stock StockFilter) {
	switch stock {
	case StockIn, StockOut:
		f.Stock = stock
	default:
		f.Stock = StockAll
	}
	f.Page = 1
}

func (f *FilterState) SetMinRating(rating float64) {
	if rating < 0 {
		rating = 0
	}
	f.MinRating = rating
	f.Page = 1
}

func (f *FilterState) SetSeller(sellerID string) {
	if sellerID == "" {
		sellerID = AllSellers
	}
	f.SellerID = sellerID
	f.Page = 1
}

func (f *FilterState) SetSort(sortBy, sortOrder string) {
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	f.SortBy = sortBy
	f.SortOrder = sortOrder
	f.Page = 1
}

// SetPage moves to another page without disturbing any facet.
func (f *FilterState) SetPage(page int) {
	f.Page = pagination.NormalizePage(page)
}

// Reset restores every facet to its default in one step.
func (f *FilterState) Reset() {
	*f = DefaultFilters()
}

// facetsEqual compares everything except the page number.
func (f FilterState) facetsEqual(other FilterState) bool {
	return f.Search == other.Search &&
		f.Category == other.Category &&
		floatPtrEqual(f.PriceMin, other.PriceMin) &&
		floatPtrEqual(f.PriceMax, other.PriceMax) &&
		f.Stock == other.Stock &&
		f.MinRating == other.MinRating &&
		f.SellerID == other.SellerID &&
		f.SortBy == other.SortBy &&
		f.SortOrder == other.SortOrder &&
		f.Limit == other.Limit
}

// Values renders the state as the upstream products query. Unset
// facets are omitted rather than sent as empty strings.
func (f FilterState) Values() url.Values {
	values := url.Values{}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.Category != "" && f.Category != AllCategories {
		values.Set("category", f.Category)
	}
	if f.PriceMin != nil {
		values.Set("minPrice", formatFloat(*f.PriceMin))
	}
	if f.PriceMax != nil {
		values.Set("maxPrice", formatFloat(*f.PriceMax))
	}
	if f.Stock != "" && f.Stock != StockAll {
		values.Set("stock", string(f.Stock))
	}
	if f.MinRating > 0 {
		values.Set("minRating", formatFloat(f.MinRating))
	}
	if f.SellerID != "" && f.SellerID != AllSellers {
		values.Set("sellerId", f.SellerID)
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	values.Set("sortBy", sortBy)
	sortOrder := f.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	values.Set("sortOrder", sortOrder)
	values.Set("page", strconv.Itoa(pagination.NormalizePage(f.Page)))
	values.Set("limit", strconv.Itoa(pagination.NormalizeLimit(f.Limit)))
	return values
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
