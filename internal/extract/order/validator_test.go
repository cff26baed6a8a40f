package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrder(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name  string
		order Order
		valid bool
	}{
		{
			name:  "number and date present",
			order: Order{OrderNumber: "200013724127732", OrderDate: "January 15, 2024"},
			valid: true,
		},
		{
			name:  "missing date rejected even with everything else present",
			order: Order{OrderNumber: "200013724127732", OrderTotal: Amount(99.99), Items: []OrderItem{{Name: "Product 1", Price: 49.99, Quantity: 1}}},
			valid: false,
		},
		{
			name:  "missing number",
			order: Order{OrderDate: "January 15, 2024"},
			valid: false,
		},
		{
			name:  "whitespace-only number",
			order: Order{OrderNumber: "   ", OrderDate: "January 15, 2024"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.ValidOrder(tt.order))
		})
	}
}

func TestValidItem(t *testing.T) {
	v := NewValidator([]string{"Sign in", "My Account"})

	tests := []struct {
		name  string
		item  OrderItem
		valid bool
	}{
		{name: "real product", item: OrderItem{Name: "Great Value Whole Milk"}, valid: true},
		{name: "too short", item: OrderItem{Name: "abc"}, valid: false},
		{name: "four characters passes the length check", item: OrderItem{Name: "abcd"}, valid: true},
		{name: "filtered keyword substring", item: OrderItem{Name: "Sign in to view"}, valid: false},
		{name: "keyword match is case-sensitive", item: OrderItem{Name: "sign in to view"}, valid: true},
		{name: "empty after sanitization", item: OrderItem{Name: ""}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.ValidItem(tt.item))
		})
	}
}

func TestFilterPrunesItemsWithoutDroppingOrder(t *testing.T) {
	v := NewValidator([]string{"Subtotal"})

	orders := []Order{
		{
			OrderNumber: "1001",
			OrderDate:   "March 3, 2024",
			Items: []OrderItem{
				{Name: "Bananas 3 lb", Price: 1.99, Quantity: 1},
				{Name: "ab", Price: 0, Quantity: 1},
				{Name: "Subtotal row", Price: 10, Quantity: 1},
			},
		},
		{OrderNumber: "", OrderDate: "March 3, 2024"},
	}

	kept := v.Filter(orders)
	assert.Len(t, kept, 1)
	assert.Equal(t, "1001", kept[0].OrderNumber)
	assert.Len(t, kept[0].Items, 1)
	assert.Equal(t, "Bananas 3 lb", kept[0].Items[0].Name)
}

func TestFilterAllItemsInvalidYieldsNilItems(t *testing.T) {
	v := NewValidator(nil)

	kept := v.Filter([]Order{{
		OrderNumber: "1002",
		OrderDate:   "March 4, 2024",
		Items:       []OrderItem{{Name: "ab"}},
	}})
	assert.Len(t, kept, 1)
	assert.Nil(t, kept[0].Items)
}
