package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/internal/payment"
)

// Customer is the contact block of a checkout draft.
type Customer struct {
	Email     string `json:"email" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
}

// Address is a shipping or billing address. Postal code is optional.
type Address struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" validate:"required"`
}

// BillingDetails is the distinct-billing variant. A draft with a nil
// *BillingDetails bills to the shipping address; there is no separate flag
// to keep in sync with possibly stale fields.
type BillingDetails struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Email     string  `json:"email" validate:"required"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// Draft is the ephemeral, checkout-scoped form state. It is never persisted;
// it lives for one submission attempt and its retries.
type Draft struct {
	Customer       Customer        `json:"customer"`
	Shipping       Address         `json:"shippingAddress"`
	Billing        *BillingDetails `json:"billingAddress,omitempty"`
	ShippingOption ShippingOption  `json:"shippingOption"`
	DiscountCode   string          `json:"discountCode,omitempty"`
	Card           payment.Card    `json:"-"`
}

// ValidationError lists the required fields a draft is missing. It is a
// local failure: no network call was attempted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// validateDraft checks required customer and shipping fields, and billing
// fields only when a distinct billing block is present.
func validateDraft(validate *validator.Validate, draft Draft) error {
	fields := collectMissing(validate.Struct(draft.Customer), "")
	fields = append(fields, collectMissing(validate.Struct(draft.Shipping), "")...)
	if draft.Billing != nil {
		fields = append(fields, collectMissing(validate.Struct(draft.Billing), "billing ")...)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func collectMissing(err error, prefix string) []string {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{prefix + "invalid input"}
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s%s is required", prefix, lowerCamel(fieldError.Field())))
	}
	return fields
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
