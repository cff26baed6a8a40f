// Package statetree locates and normalizes order data inside embedded
// page state trees. Two shapes are known: a flat store-style state
// object and a framework page-props object; both change without notice,
// so exact key-paths are tried first and a fuzzy key-name search covers
// layouts that have drifted.
package statetree

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/orderlens/order-extract-backend/internal/extract/fields"
	"github.com/orderlens/order-extract-backend/internal/extract/order"
	"github.com/orderlens/order-extract-backend/internal/extract/sanitize"
	"github.com/orderlens/order-extract-backend/internal/extract/textscan"
)

// DefaultPaths are the known key-paths to the raw order array, in
// priority order. The first path whose terminal value is an array wins
// and later paths are never consulted.
var DefaultPaths = [][]string{
	{"order", "orders"},
	{"orderHistory", "orders"},
	{"purchaseHistory", "orders"},
	{"account", "orderHistory"},
	{"props", "pageProps", "initialData", "data", "orderHistory", "orders"},
	{"props", "pageProps", "initialData", "data", "orderHistoryV2", "orderGroups"},
	{"props", "pageProps", "orders"},
}

// fuzzySubstrings drive the fallback key search when no exact path
// resolves.
var fuzzySubstrings = []string{"order", "purchase", "history"}

// Candidate-name lists for per-order and per-item field resolution,
// in priority order. Earlier names win even when later ones are
// present.
var (
	orderNumberFields = []string{"orderNumber", "orderId", "orderID", "id", "orderNo", "groupId", "displayId", "number"}
	orderDateFields   = []string{"orderDate", "orderPlacedDate", "placedDate", "orderSubmissionDate", "date", "createdAt", "purchaseDate"}
	orderTotalFields  = []string{"orderTotal", "grandTotal", "total", "totalAmount", "priceDetails"}
	taxFields         = []string{"tax", "taxTotal", "salesTax"}
	deliveryFields    = []string{"deliveryCharges", "deliveryFee", "shippingCost", "shipping", "fulfillmentCharge"}
	tipFields         = []string{"tip", "driverTip", "tipAmount"}

	// ordered container names an item array hides under
	itemContainerFields = []string{"items", "lineItems", "products", "orderItems"}

	itemNameFields  = []string{"name", "productName", "title", "displayName", "description", "productInfo"}
	itemPriceFields = []string{"price", "linePrice", "itemPrice", "unitPrice", "amount", "priceInfo"}
	itemQtyFields   = []string{"quantity", "qty", "count"}
	itemURLFields   = []string{"productUrl", "productURL", "url", "link", "productLink", "canonicalUrl", "productPageUrl"}

	// names an amount hides under once a money object is unwrapped
	moneyValueFields = []string{"value", "amount", "price", "linePrice", "displayValue", "total"}
	nestedNameFields = []string{"name", "title", "displayName"}
)

// Parser walks state trees and emits canonical orders.
type Parser struct {
	paths     [][]string
	sanitizer *sanitize.Sanitizer
}

// New creates a parser over the given key-paths. Nil paths fall back to
// DefaultPaths.
func New(paths [][]string, s *sanitize.Sanitizer) *Parser {
	if paths == nil {
		paths = DefaultPaths
	}
	return &Parser{paths: paths, sanitizer: s}
}

// Parse locates the raw order array in root and normalizes each
// element. The bool reports whether an order array was located at all,
// distinguishing "tree had no orders" from "tree is not an order tree".
func (p *Parser) Parse(root any) ([]order.Order, bool) {
	raw, ok := p.LocateOrderArray(root)
	if !ok {
		return nil, false
	}

	var orders []order.Order
	for _, el := range raw {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		orders = append(orders, p.parseOrder(obj))
	}
	return orders, true
}

// LocateOrderArray applies the two-tier search: exact configured paths
// in priority order first, then the fuzzy key-name scan over the root's
// own keys and one level of nested object keys.
func (p *Parser) LocateOrderArray(root any) ([]any, bool) {
	for _, path := range p.paths {
		if arr, ok := walkPath(root, path); ok {
			return arr, true
		}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, false
	}
	if arr, ok := fuzzyScan(obj); ok {
		return arr, true
	}

	// one level of nested objects, again in deterministic key order
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if nested, ok := obj[key].(map[string]any); ok {
			if arr, ok := fuzzyScan(nested); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

// walkPath descends property by property; the terminal value must be an
// array.
func walkPath(root any, path []string) ([]any, bool) {
	current := root
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	arr, ok := current.([]any)
	return arr, ok
}

// fuzzyScan returns the first key (in sorted order, so the scan is
// deterministic) whose name contains an order-ish substring and whose
// value is an array.
func fuzzyScan(obj map[string]any) ([]any, bool) {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		arr, ok := obj[key].([]any)
		if !ok {
			continue
		}
		lower := strings.ToLower(key)
		for _, sub := range fuzzySubstrings {
			if strings.Contains(lower, sub) {
				return arr, true
			}
		}
	}
	return nil, false
}

func (p *Parser) parseOrder(obj map[string]any) order.Order {
	var o order.Order

	if num, ok := fields.ResolveString(obj, orderNumberFields); ok {
		o.OrderNumber = num
	}
	if date, ok := resolveDate(obj, orderDateFields); ok {
		o.OrderDate = date
	}
	if v, ok := resolveAmount(obj, orderTotalFields, 0); ok {
		o.OrderTotal = order.Amount(v)
	}
	if v, ok := resolveAmount(obj, taxFields, 0); ok {
		o.Tax = order.Amount(v)
	}
	if v, ok := resolveAmount(obj, deliveryFields, 0); ok {
		o.DeliveryCharges = order.Amount(v)
	}
	if v, ok := resolveAmount(obj, tipFields, 0); ok {
		o.Tip = order.Amount(v)
	}
	o.Items = p.parseItems(obj)

	return o
}

// parseItems locates the item array under the ordered container names
// and normalizes each element.
func (p *Parser) parseItems(obj map[string]any) []order.OrderItem {
	var raw []any
	for _, container := range itemContainerFields {
		if arr, ok := obj[container].([]any); ok {
			raw = arr
			break
		}
	}

	var items []order.OrderItem
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}

		name := resolveName(m)
		if name == "" {
			continue
		}
		name = p.sanitizer.Clean(name)
		if name == "" {
			continue
		}

		it := order.OrderItem{Name: name, Quantity: 1}
		if v, ok := resolveAmount(m, itemPriceFields, 0); ok && v >= 0 {
			it.Price = v
		}
		if q, ok := fields.ResolveNumber(m, itemQtyFields); ok {
			// same plausibility bound as the text path
			if n := int(q); n > 0 && n < textscan.MaxQuantity {
				it.Quantity = n
			}
		}
		if u, ok := fields.ResolveString(m, itemURLFields); ok {
			it.ProductURL = u
		}
		items = append(items, it)
	}
	return items
}

// resolveName resolves an item name, unwrapping one level of product
// info objects ({"productInfo": {"name": ...}}).
func resolveName(obj map[string]any) string {
	v, ok := fields.Resolve(obj, itemNameFields)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if s, ok := fields.ResolveString(val, nestedNameFields); ok {
			return s
		}
	}
	return ""
}

// resolveAmount resolves a monetary field, unwrapping nested money
// objects ({"grandTotal": {"value": 12.5}}) up to two levels deep. A
// name bound to something unusable counts as absent and the next name
// is tried, mirroring fields.ResolveNumber.
func resolveAmount(obj map[string]any, names []string, depth int) (float64, bool) {
	for _, name := range names {
		v, present := obj[name]
		if !present {
			continue
		}
		if n, ok := fields.CoerceNumber(v); ok {
			return n, true
		}
		if nested, ok := v.(map[string]any); ok && depth < 2 {
			if n, ok := resolveAmount(nested, moneyValueFields, depth+1); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// resolveDate resolves an order date. Epoch timestamps (seconds or
// milliseconds) found in framework trees are rendered as a readable
// calendar date so the emitted field always contains one.
func resolveDate(obj map[string]any, names []string) (string, bool) {
	v, ok := fields.Resolve(obj, names)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case float64:
		return formatEpoch(val), true
	case int64:
		return formatEpoch(float64(val)), true
	case int:
		return formatEpoch(float64(val)), true
	}
	return "", false
}

func formatEpoch(n float64) string {
	// heuristically distinguish milliseconds from seconds
	const msThreshold = 1e12
	var t time.Time
	if n >= msThreshold {
		t = time.UnixMilli(int64(n))
	} else if n >= 1e9 {
		t = time.Unix(int64(n), 0)
	} else {
		// too small to be an epoch; pass the digits through
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return t.UTC().Format("January 2, 2006")
}
