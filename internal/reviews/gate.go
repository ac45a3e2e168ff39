package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/keksoko/storefront/internal/upstream"
	pkgerrors "github.com/keksoko/storefront/pkg/errors"
	"github.com/keksoko/storefront/pkg/logger"
)

type gateway interface {
	ReviewEligibility(ctx context.Context, productID, authToken string) (*upstream.ReviewEligibility, error)
	SubmitReview(ctx context.Context, productID, authToken string, review upstream.Review) error
}

// FormMode tells the presentation layer what to render for a product
// and viewer.
type FormMode string

const (
	// ModeSignIn means the viewer is anonymous and only a sign-in
	// prompt should be shown.
	ModeSignIn FormMode = "sign_in"
	// ModePurchaseRequired means the viewer is signed in but has no
	// delivered order for this product.
	ModePurchaseRequired FormMode = "purchase_required"
	// ModeNewReview means a fresh review form should be offered.
	ModeNewReview FormMode = "new_review"
	// ModeExistingReview means the viewer's review is shown read-only
	// with an edit action that pre-fills the form.
	ModeExistingReview FormMode = "existing_review"
)

// GateState is what the storefront renders. Mode is derived purely
// from the server's eligibility tuple; no eligibility is computed here.
type GateState struct {
	Mode        FormMode         `json:"mode"`
	CanReview   bool             `json:"canReview"`
	HasReviewed bool             `json:"hasReviewed"`
	UserReview  *upstream.Review `json:"userReview,omitempty"`
}

// Input is a review create or edit, both going to the same endpoint.
type Input struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Service decides what review UI a viewer gets and relays submissions.
type Service interface {
	State(ctx context.Context, productID, authToken string) (GateState, error)
	Submit(ctx context.Context, productID, authToken string, input Input) (GateState, error)
}

type service struct {
	gw   gateway
	logg *logger.Logger
}

// NewService builds the review gate service.
func NewService(gw gateway, logg *logger.Logger) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway required")
	}
	return &service{gw: gw, logg: logg}, nil
}

// State fetches the eligibility tuple and maps it to a form mode. An
// anonymous viewer short-circuits to the sign-in prompt without a
// network call.
func (s *service) State(ctx context.Context, productID, authToken string) (GateState, error) {
	if productID == "" {
		return GateState{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if authToken == "" {
		return GateState{Mode: ModeSignIn}, nil
	}

	eligibility, err := s.gw.ReviewEligibility(ctx, productID, authToken)
	if err != nil {
		return GateState{}, err
	}
	return stateFrom(eligibility), nil
}

// Submit relays a create or edit and then refetches the tuple so the
// returned state reflects what the server actually stored.
func (s *service) Submit(ctx context.Context, productID, authToken string, input Input) (GateState, error) {
	if productID == "" {
		return GateState{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if authToken == "" {
		return GateState{}, pkgerrors.New(pkgerrors.CodeForbidden, "sign in to review")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return GateState{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]string{"field": "rating"})
	}
	if strings.TrimSpace(input.Comment) == "" {
		return GateState{}, pkgerrors.New(pkgerrors.CodeValidation, "comment is required").
			WithDetails(map[string]string{"field": "comment"})
	}

	err := s.gw.SubmitReview(ctx, productID, authToken, upstream.Review{
		Rating:  input.Rating,
		Comment: strings.TrimSpace(input.Comment),
	})
	if err != nil {
		return GateState{}, err
	}

	eligibility, err := s.gw.ReviewEligibility(ctx, productID, authToken)
	if err != nil {
		// The write landed; only the refresh failed.
		if s.logg != nil {
			s.logg.Warn(ctx, "review saved but state refresh failed")
		}
		return GateState{}, err
	}
	return stateFrom(eligibility), nil
}

func stateFrom(eligibility *upstream.ReviewEligibility) GateState {
	state := GateState{
		CanReview:   eligibility.CanReview,
		HasReviewed: eligibility.HasReviewed,
		UserReview:  eligibility.UserReview,
	}
	switch {
	case eligibility.HasReviewed:
		state.Mode = ModeExistingReview
	case eligibility.CanReview:
		state.Mode = ModeNewReview
	default:
		state.Mode = ModePurchaseRequired
	}
	return state
}
