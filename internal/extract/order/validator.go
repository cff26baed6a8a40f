package order

import "strings"

// MinNameLength is the shortest sanitized item name considered a real
// product description.
const MinNameLength = 3

// Validator applies structural acceptance rules to parsed candidates.
// Rejections are silent: a bad element is dropped, never an error, so a
// torn read of a mutating page degrades to a smaller batch instead of a
// failed extraction.
type Validator struct {
	filterKeywords []string
}

// NewValidator creates a validator that additionally rejects item names
// containing any of the given keywords (case-sensitive substrings,
// typically navigation labels and other administrative page text).
func NewValidator(filterKeywords []string) *Validator {
	return &Validator{filterKeywords: filterKeywords}
}

// ValidOrder reports whether an order carries the two fields every
// emitted order must have: a non-empty order number and a non-empty
// order date.
func (v *Validator) ValidOrder(o Order) bool {
	return strings.TrimSpace(o.OrderNumber) != "" && strings.TrimSpace(o.OrderDate) != ""
}

// ValidItem reports whether a sanitized item name is long enough and
// free of filtered keywords.
func (v *Validator) ValidItem(it OrderItem) bool {
	name := strings.TrimSpace(it.Name)
	if len(name) <= MinNameLength {
		return false
	}
	for _, kw := range v.filterKeywords {
		if strings.Contains(name, kw) {
			return false
		}
	}
	return true
}

// Filter drops invalid orders and prunes invalid items from the
// survivors. Item rejection never rejects the containing order.
func (v *Validator) Filter(orders []Order) []Order {
	var kept []Order
	for _, o := range orders {
		if !v.ValidOrder(o) {
			continue
		}
		if len(o.Items) > 0 {
			items := make([]OrderItem, 0, len(o.Items))
			for _, it := range o.Items {
				if v.ValidItem(it) {
					items = append(items, it)
				}
			}
			if len(items) == 0 {
				items = nil
			}
			o.Items = items
		}
		kept = append(kept, o)
	}
	return kept
}
