// Package order defines the canonical order model produced by the
// extraction pipeline, along with the structural acceptance rules that
// decide whether a parsed candidate is worth emitting.
package order

// Order is one purchase transaction as observed on the page.
//
// The monetary fields are pointers because "not observed" and "observed
// as zero" are different facts: a page that never mentions tax must not
// produce a zero tax amount.
type Order struct {
	OrderNumber     string      `json:"orderNumber"`
	OrderDate       string      `json:"orderDate"`
	OrderTotal      *float64    `json:"orderTotal,omitempty"`
	Tax             *float64    `json:"tax,omitempty"`
	DeliveryCharges *float64    `json:"deliveryCharges,omitempty"`
	Tip             *float64    `json:"tip,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line within an order.
type OrderItem struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	ProductURL string  `json:"productUrl"`
}

// Result wraps the extracted orders. The pipeline returns a nil *Result
// when no extraction attempt materialized; a non-nil Result with zero
// orders means a source was found but held no orders (a legitimate
// outcome for a fresh account).
type Result struct {
	Orders []Order `json:"orders"`
}

// Amount returns a pointer to v, for building optional monetary fields.
func Amount(v float64) *float64 {
	return &v
}
