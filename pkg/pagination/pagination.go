package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many items any catalog query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page mirrors the pagination block the marketplace API returns. The
// storefront reflects these values and never computes them itself.
type Page struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps the requested page to 1 or greater.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Normalize applies both page and limit rules to the params.
func Normalize(params Params) Params {
	return Params{
		Page:  NormalizePage(params.Page),
		Limit: NormalizeLimit(params.Limit),
	}
}
