package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePriorityOrder(t *testing.T) {
	// When several candidate names are present at once, the earlier
	// name always wins, regardless of what the later fields hold.
	obj := map[string]any{
		"orderId":     "A-111",
		"orderNumber": "B-222",
		"id":          "C-333",
	}

	v, ok := Resolve(obj, []string{"orderNumber", "orderId", "id"})
	assert.True(t, ok)
	assert.Equal(t, "B-222", v)

	v, ok = Resolve(obj, []string{"id", "orderNumber"})
	assert.True(t, ok)
	assert.Equal(t, "C-333", v)
}

func TestResolveSkipsUnusableValues(t *testing.T) {
	obj := map[string]any{
		"total":      "",
		"grandTotal": "   ",
		"amount":     float64(42.5),
	}

	v, ok := Resolve(obj, []string{"total", "grandTotal", "amount"})
	assert.True(t, ok)
	assert.Equal(t, 42.5, v)
}

func TestResolveNothingUsable(t *testing.T) {
	obj := map[string]any{"a": "", "b": nil, "c": true}
	_, ok := Resolve(obj, []string{"a", "b", "c", "missing"})
	assert.False(t, ok)

	_, ok = Resolve(nil, []string{"a"})
	assert.False(t, ok)
}

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		obj      map[string]any
		names    []string
		expected string
		ok       bool
	}{
		{
			name:     "string value trimmed",
			obj:      map[string]any{"orderNumber": "  200013724127732 "},
			names:    []string{"orderNumber"},
			expected: "200013724127732",
			ok:       true,
		},
		{
			name: "json number formatted without exponent",
			// encoding/json decodes every number as float64
			obj:      map[string]any{"id": float64(200013724127732)},
			names:    []string{"id"},
			expected: "200013724127732",
			ok:       true,
		},
		{
			name:  "absent",
			obj:   map[string]any{},
			names: []string{"id"},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveString(tt.obj, tt.names)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveNumber(t *testing.T) {
	tests := []struct {
		name     string
		obj      map[string]any
		names    []string
		expected float64
		ok       bool
	}{
		{
			name:     "plain number",
			obj:      map[string]any{"total": 99.99},
			names:    []string{"total"},
			expected: 99.99,
			ok:       true,
		},
		{
			name:     "currency string",
			obj:      map[string]any{"total": "$1,234.56"},
			names:    []string{"total"},
			expected: 1234.56,
			ok:       true,
		},
		{
			name:     "negative currency string",
			obj:      map[string]any{"refund": "-$5.00"},
			names:    []string{"refund"},
			expected: -5.00,
			ok:       true,
		},
		{
			name:     "unparsable string falls through to next name",
			obj:      map[string]any{"total": "see receipt", "grandTotal": "12.34"},
			names:    []string{"total", "grandTotal"},
			expected: 12.34,
			ok:       true,
		},
		{
			name:  "unparsable everywhere is absent, not zero",
			obj:   map[string]any{"total": "n/a"},
			names: []string{"total"},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveNumber(tt.obj, tt.names)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 0.0001)
			}
		})
	}
}

func TestCoerceNumber(t *testing.T) {
	n, ok := CoerceNumber("$12.50 each")
	assert.True(t, ok)
	assert.InDelta(t, 12.50, n, 0.0001)

	_, ok = CoerceNumber("")
	assert.False(t, ok)

	_, ok = CoerceNumber(map[string]any{"value": 1.0})
	assert.False(t, ok)

	n, ok = CoerceNumber(7)
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)
}
