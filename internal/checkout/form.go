package checkout

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/keksoko/storefront/pkg/errors"
)

var validate = validator.New()

// Form carries the contact fields a buyer submits at checkout.
type Form struct {
	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
	MpesaPhone string `json:"mpesaPhone"`
}

// Validate checks contact fields in order: name, then email, then
// phone. The first failure is returned and later fields are not
// evaluated. No network call happens here.
func (f Form) Validate(phonePattern *regexp.Regexp) error {
	if strings.TrimSpace(f.GuestName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact name is required").
			WithDetails(map[string]string{"field": "guestName"})
	}
	if err := validate.Var(strings.TrimSpace(f.GuestEmail), "required,email"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "enter a valid email address").
			WithDetails(map[string]string{"field": "guestEmail"})
	}
	phone := strings.TrimSpace(f.MpesaPhone)
	if phonePattern == nil || !phonePattern.MatchString(phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, "enter a valid mobile money phone number").
			WithDetails(map[string]string{"field": "mpesaPhone"})
	}
	return nil
}
