package cart

// LineItem is one product entry in the cart. The full list is what gets
// serialized to durable storage, so field names are part of the stored
// contract.
type LineItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Seller        string   `json:"seller"`
	Quantity      int      `json:"quantity"`
	InStock       bool     `json:"inStock"`
	FreeShipping  bool     `json:"freeShipping,omitempty"`
}

// Candidate is a line item before it enters the cart; quantity is
// assigned by the store.
type Candidate struct {
	ID            string
	Name          string
	Price         float64
	OriginalPrice *float64
	Image         string
	Seller        string
	InStock       bool
	FreeShipping  bool
}

// AddResult reports whether an add was applied. A seller mismatch is
// the only business rejection; Message carries the user-facing reason.
type AddResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
