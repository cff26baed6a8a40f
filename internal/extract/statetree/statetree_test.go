package statetree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/order-extract-backend/internal/extract/sanitize"
)

func newTestParser() *Parser {
	return New(nil, sanitize.New(nil))
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestLocateOrderArrayExactPathBeatsFuzzy(t *testing.T) {
	// The tree satisfies both a configured exact path and a fuzzy key
	// match; the exact path must win.
	root := decode(t, `{
		"order": {"orders": [{"orderNumber": "exact"}]},
		"recentOrderList": [{"orderNumber": "fuzzy"}]
	}`)

	arr, ok := newTestParser().LocateOrderArray(root)
	require.True(t, ok)
	require.Len(t, arr, 1)
	assert.Equal(t, "exact", arr[0].(map[string]any)["orderNumber"])
}

func TestLocateOrderArrayPathPriority(t *testing.T) {
	// Both configured paths resolve; the earlier one wins even though
	// the later one holds more data.
	root := decode(t, `{
		"order": {"orders": [{"orderNumber": "first"}]},
		"orderHistory": {"orders": [{"orderNumber": "a"}, {"orderNumber": "b"}]}
	}`)

	arr, ok := newTestParser().LocateOrderArray(root)
	require.True(t, ok)
	require.Len(t, arr, 1)
	assert.Equal(t, "first", arr[0].(map[string]any)["orderNumber"])
}

func TestLocateOrderArrayPagePropsShape(t *testing.T) {
	root := decode(t, `{
		"props": {"pageProps": {"initialData": {"data": {"orderHistoryV2": {"orderGroups": [
			{"groupId": "g-1"}
		]}}}}}
	}`)

	arr, ok := newTestParser().LocateOrderArray(root)
	require.True(t, ok)
	assert.Len(t, arr, 1)
}

func TestLocateOrderArrayFuzzyFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "root key containing order", raw: `{"myOrderRows": [1]}`, ok: true},
		{name: "root key containing purchase", raw: `{"purchaseRecords": [1]}`, ok: true},
		{name: "nested one level", raw: `{"data": {"buyingHistoryList": [1]}}`, ok: true},
		{name: "two levels deep is out of reach", raw: `{"a": {"b": {"orderList": [1]}}}`, ok: false},
		{name: "matching key but not an array", raw: `{"orderSummary": {"x": 1}}`, ok: false},
		{name: "no match at all", raw: `{"cart": [1]}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := newTestParser().LocateOrderArray(decode(t, tt.raw))
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseFieldNameVariants(t *testing.T) {
	root := decode(t, `{"orders": [{
		"orderId": "A-1001",
		"placedDate": "March 3, 2024",
		"grandTotal": "$58.12",
		"taxTotal": 3.42,
		"deliveryFee": {"value": 7.95},
		"driverTip": 5
	}]}`)

	orders, located := newTestParser().Parse(root)
	require.True(t, located)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "A-1001", o.OrderNumber)
	assert.Equal(t, "March 3, 2024", o.OrderDate)
	require.NotNil(t, o.OrderTotal)
	assert.InDelta(t, 58.12, *o.OrderTotal, 0.0001)
	require.NotNil(t, o.Tax)
	assert.InDelta(t, 3.42, *o.Tax, 0.0001)
	require.NotNil(t, o.DeliveryCharges)
	assert.InDelta(t, 7.95, *o.DeliveryCharges, 0.0001)
	require.NotNil(t, o.Tip)
	assert.InDelta(t, 5.0, *o.Tip, 0.0001)
}

func TestParseNamePriorityOverLaterFields(t *testing.T) {
	// orderNumber and orderId both present: orderNumber is earlier in
	// the candidate list and must win.
	root := decode(t, `{"orders": [{
		"orderNumber": "primary",
		"orderId": "secondary",
		"orderDate": "Jan 1, 2024"
	}]}`)

	orders, _ := newTestParser().Parse(root)
	require.Len(t, orders, 1)
	assert.Equal(t, "primary", orders[0].OrderNumber)
}

func TestParseNumericOrderNumber(t *testing.T) {
	root := decode(t, `{"orders": [{"id": 200013724127732, "date": "Jan 1, 2024"}]}`)

	orders, _ := newTestParser().Parse(root)
	require.Len(t, orders, 1)
	assert.Equal(t, "200013724127732", orders[0].OrderNumber)
}

func TestParseEpochDates(t *testing.T) {
	root := decode(t, `{"orders": [
		{"orderNumber": "1", "orderDate": 1705276800000},
		{"orderNumber": "2", "orderDate": 1705276800}
	]}`)

	orders, _ := newTestParser().Parse(root)
	require.Len(t, orders, 2)
	assert.Equal(t, "January 15, 2024", orders[0].OrderDate)
	assert.Equal(t, "January 15, 2024", orders[1].OrderDate)
}

func TestParseItemContainersAndFields(t *testing.T) {
	root := decode(t, `{"orders": [{
		"orderNumber": "1",
		"orderDate": "Jan 1, 2024",
		"lineItems": [
			{
				"productInfo": {"name": "Great Value Whole Milk"},
				"priceInfo": {"linePrice": {"value": 3.49}},
				"quantity": 2,
				"canonicalUrl": "/ip/milk/10450114"
			},
			{"name": "Bananas each Qty 6", "price": "$0.58", "qty": 6},
			{"name": "Sparkling Water", "price": 7.99, "quantity": 175}
		]
	}]}`)

	orders, _ := newTestParser().Parse(root)
	require.Len(t, orders, 1)
	items := orders[0].Items
	require.Len(t, items, 3)

	assert.Equal(t, "Great Value Whole Milk", items[0].Name)
	assert.InDelta(t, 3.49, items[0].Price, 0.0001)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "/ip/milk/10450114", items[0].ProductURL)

	// raw name noise goes through the sanitizer
	assert.Equal(t, "Bananas each", items[1].Name)
	assert.InDelta(t, 0.58, items[1].Price, 0.0001)
	assert.Equal(t, 6, items[1].Quantity)

	// implausible quantity falls back to 1
	assert.Equal(t, 1, items[2].Quantity)
}

func TestParseItemContainerPriority(t *testing.T) {
	// "items" is earlier in the container list than "products"
	root := decode(t, `{"orders": [{
		"orderNumber": "1",
		"orderDate": "Jan 1, 2024",
		"products": [{"name": "from products", "price": 1}],
		"items": [{"name": "from items", "price": 2}]
	}]}`)

	orders, _ := newTestParser().Parse(root)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "from items", orders[0].Items[0].Name)
}

func TestParseLocatedButEmpty(t *testing.T) {
	orders, located := newTestParser().Parse(decode(t, `{"orders": []}`))
	assert.True(t, located)
	assert.Empty(t, orders)

	orders, located = newTestParser().Parse(decode(t, `{"cart": {"x": 1}}`))
	assert.False(t, located)
	assert.Empty(t, orders)
}

func TestParseSkipsNonObjectElements(t *testing.T) {
	orders, located := newTestParser().Parse(decode(t, `{"orders": ["junk", 42, {"orderNumber": "1", "orderDate": "Jan 1, 2024"}]}`))
	assert.True(t, located)
	require.Len(t, orders, 1)
	assert.Equal(t, "1", orders[0].OrderNumber)
}
