package upstream

import (
	"time"

	"github.com/keksoko/storefront/pkg/pagination"
)

// Product is the catalog payload the marketplace API returns for browsing.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Seller        string   `json:"seller"`
	SellerID      string   `json:"sellerId"`
	CategoryID    string   `json:"categoryId"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	InStock       bool     `json:"inStock"`
	FreeShipping  bool     `json:"freeShipping,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
	FlashSale     bool     `json:"flashSale,omitempty"`
}

// ProductPage is one page of catalog results with server-computed pagination.
type ProductPage struct {
	Products   []Product       `json:"products"`
	Pagination pagination.Page `json:"pagination"`
}

// OrderItem is one cart line submitted at checkout.
type OrderItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Seller    string  `json:"seller"`
}

// OrderRequest is the checkout submission body.
type OrderRequest struct {
	Items      []OrderItem `json:"items"`
	Phone      string      `json:"phone"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
}

// OrderCreated carries the opaque handles returned by order creation.
type OrderCreated struct {
	OrderID           string `json:"orderId"`
	CheckoutRequestID string `json:"checkoutRequestId"`
	Message           string `json:"message"`
}

// PaymentState is the gateway-side payment status.
type PaymentState string

const (
	PaymentPending PaymentState = "PENDING"
	PaymentPaid    PaymentState = "PAID"
	PaymentFailed  PaymentState = "FAILED"
)

// Terminal reports whether polling should stop at this state.
func (s PaymentState) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// Review is a buyer's product review.
type Review struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ReviewEligibility is the server-computed review gate tuple. The
// storefront branches on it and never derives eligibility itself.
type ReviewEligibility struct {
	CanReview   bool    `json:"canReview"`
	HasReviewed bool    `json:"hasReviewed"`
	UserReview  *Review `json:"userReview,omitempty"`
}
