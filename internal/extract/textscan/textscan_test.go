package textscan

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/order-extract-backend/internal/extract/sanitize"
)

func newTestParser() *Parser {
	return New(sanitize.New(nil), DefaultNonItemMarkers)
}

func TestOrderNumber(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "order hash prefix", input: "Order #200013724127732 placed", expected: "200013724127732", ok: true},
		{name: "bare hash", input: "your receipt #555-123", expected: "555-123", ok: true},
		{name: "first match wins", input: "Order #111 then Order #222", expected: "111", ok: true},
		{name: "no match", input: "no identifiers here", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.OrderNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOrderDate(t *testing.T) {
	p := newTestParser()

	got, ok := p.OrderDate("Placed on January 15, 2024 at noon")
	assert.True(t, ok)
	assert.Equal(t, "January 15, 2024", got)

	got, ok = p.OrderDate("Arriving Mar 3rd, 2023")
	assert.True(t, ok)
	assert.Equal(t, "Mar 3rd, 2023", got)

	_, ok = p.OrderDate("no dates at all")
	assert.False(t, ok)
}

func TestOrderDateAppendsCurrentYear(t *testing.T) {
	p := newTestParser()
	p.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	got, ok := p.OrderDate("Delivered February 9")
	assert.True(t, ok)
	assert.Equal(t, "February 9, 2024", got)
}

func TestOrderTotalExplicitPhrasings(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "labeled total beats larger amounts", input: "Unit price: $5.99, Total: $59.90, MSRP $99.00", expected: 59.90},
		{name: "order total", input: "Order Total: $99.99", expected: 99.99},
		{name: "amount before total keyword", input: "$42.10 total for 3 items", expected: 42.10},
		{name: "total colon without dollar sign", input: "Total: 17.25", expected: 17.25},
		{name: "comma thousands", input: "Total: $1,234.56", expected: 1234.56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.OrderTotal(tt.input)
			require.True(t, ok)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestOrderTotalMaxFallback(t *testing.T) {
	p := newTestParser()

	// no labeled total anywhere: the grand total is taken to be the
	// largest dollar amount in the text
	got, ok := p.OrderTotal("Milk $5.99 Bread $2.49 charged $59.90 to card")
	require.True(t, ok)
	assert.InDelta(t, 59.90, got, 0.0001)

	_, ok = p.OrderTotal("nothing priced here")
	assert.False(t, ok)
}

func TestQuantityPlausibilityBound(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		input    string
		expected int
		ok       bool
	}{
		{name: "qty colon", input: "Qty: 3", expected: 3, ok: true},
		{name: "quantity word", input: "Quantity 12", expected: 12, ok: true},
		{name: "n x phrasing", input: "2 x Protein Bar", expected: 2, ok: true},
		{name: "parenthesized suffix", input: "Paper Towels (4)", expected: 4, ok: true},
		{name: "multipack count rejected", input: "Multipack Quantity: 175", ok: false},
		{name: "zero rejected", input: "Qty: 0", ok: false},
		{name: "upper bound exclusive", input: "Qty: 100", ok: false},
		{name: "just under bound", input: "Qty: 99", expected: 99, ok: true},
		{name: "no quantity", input: "Wireless Mouse", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Quantity(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestItemsSkipsNonItemLines(t *testing.T) {
	p := newTestParser()

	text := "Delivered Jan 15\n" +
		"Great Value Whole Milk $3.49\n" +
		"Subtotal $53.48\n" +
		"Total $58.12\n" +
		"+8\n" +
		"Bananas each $0.58 Qty 6\n" +
		"Track shipment $0.00\n"

	items := p.Items(text)
	require.Len(t, items, 2)

	assert.Equal(t, "Great Value Whole Milk", items[0].Name)
	assert.InDelta(t, 3.49, items[0].Price, 0.0001)
	assert.Equal(t, 1, items[0].Quantity)

	assert.Equal(t, "Bananas each", items[1].Name)
	assert.InDelta(t, 0.58, items[1].Price, 0.0001)
	assert.Equal(t, 6, items[1].Quantity)
}

func TestItemsMultipackQuantityDefaultsToOne(t *testing.T) {
	p := newTestParser()

	items := p.Items("Sparkling Water $7.99 Multipack Quantity: 175")
	require.Len(t, items, 1)
	assert.Equal(t, "Sparkling Water", items[0].Name)
	assert.Equal(t, 1, items[0].Quantity, "multipack count must not be misread as purchase quantity")
}

func TestParseOrderEndToEnd(t *testing.T) {
	p := newTestParser()

	text := "Order #200013724127732\n" +
		"Placed on January 15, 2024\n" +
		"Order Total: $99.99\n" +
		"Product 1 $49.99\n" +
		"Product 2 $50.00\n"

	o := p.ParseOrder(text)

	assert.Equal(t, "200013724127732", o.OrderNumber)
	assert.Equal(t, "January 15, 2024", o.OrderDate)
	require.NotNil(t, o.OrderTotal)
	assert.InDelta(t, 99.99, *o.OrderTotal, 0.0001)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Product 1", o.Items[0].Name)
	assert.InDelta(t, 49.99, o.Items[0].Price, 0.0001)
	assert.Equal(t, "Product 2", o.Items[1].Name)
	assert.InDelta(t, 50.00, o.Items[1].Price, 0.0001)
}

func TestParseOrderMissingFieldsLeftEmpty(t *testing.T) {
	p := newTestParser()

	o := p.ParseOrder("just some marketing copy, nothing to see")
	assert.Empty(t, o.OrderNumber)
	assert.Empty(t, o.OrderDate)
	assert.Nil(t, o.OrderTotal)
	assert.Empty(t, o.Items)
}

func TestQuantityBoundIsNamedConstant(t *testing.T) {
	// guard against the bound silently drifting
	assert.Equal(t, 100, MaxQuantity)
	_, ok := newTestParser().Quantity("Qty: " + strconv.Itoa(MaxQuantity))
	assert.False(t, ok)
}
