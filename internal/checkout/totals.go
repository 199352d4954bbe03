package checkout

import "math"

// ShippingOption is one of the fixed shipping tiers, each with a flat fee.
type ShippingOption string

const (
	ShippingStandard  ShippingOption = "standard"
	ShippingExpress   ShippingOption = "express"
	ShippingOvernight ShippingOption = "overnight"
)

// Fee returns the flat shipping fee for the tier. Unknown values ship free,
// same as standard.
func (o ShippingOption) Fee() int64 {
	switch o {
	case ShippingExpress:
		return 55
	case ShippingOvernight:
		return 130
	default:
		return 0
	}
}

const taxRate = 0.05

// Totals are the client-computed monetary figures shown during checkout.
// They are advisory: the authoritative charge amount is set by the backend
// when it issues the payment authorization.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// ComputeTotals derives shipping, tax (5% of goods plus shipping, rounded)
// and the grand total from the cart subtotal.
func ComputeTotals(subtotal int64, option ShippingOption) Totals {
	shipping := option.Fee()
	tax := int64(math.Round(float64(subtotal+shipping) * taxRate))
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
