// Package fields resolves values out of loosely-typed objects using
// ordered candidate-name lists.
//
// Page state trees spell the same logical field a dozen different ways
// ("orderTotal", "grandTotal", "total", ...). Callers pass the names in
// priority order; the first name bound to a usable value wins, even if
// a later name would hold "better" data. That makes resolution
// deterministic regardless of what the page happens to expose.
package fields

import (
	"regexp"
	"strconv"
	"strings"
)

// nonNumeric strips everything a currency or quantity string can carry
// besides the number itself: "$1,234.56" -> "1234.56".
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Resolve returns the value bound to the first candidate name present
// with a usable value. Usable means a non-empty string or a number.
// Returns ok=false when no name resolves; callers supply defaults.
func Resolve(obj map[string]any, names []string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	for _, name := range names {
		v, present := obj[name]
		if !present {
			continue
		}
		switch val := v.(type) {
		case string:
			if strings.TrimSpace(val) != "" {
				return v, true
			}
		case float64, float32, int, int32, int64:
			return v, true
		case bool, nil:
			// not usable
		default:
			// maps and slices are usable raw material; the caller
			// decides how to descend into them
			return v, true
		}
	}
	return nil, false
}

// ResolveString resolves the first usable value and renders it as a
// string. Numbers are formatted without an exponent so JSON-decoded
// order numbers survive the round trip.
func ResolveString(obj map[string]any, names []string) (string, bool) {
	v, ok := Resolve(obj, names)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	}
	return "", false
}

// ResolveNumber returns the first candidate that coerces to a number.
// A name bound to an unparsable string counts as absent and resolution
// moves on to the next name; it is never treated as zero.
func ResolveNumber(obj map[string]any, names []string) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	for _, name := range names {
		v, present := obj[name]
		if !present {
			continue
		}
		if n, ok := CoerceNumber(v); ok {
			return n, true
		}
	}
	return 0, false
}

// CoerceNumber converts a raw value to a float64. Strings are stripped
// of every character except digits, '.' and '-' before parsing;
// anything still unparsable is reported as absent.
func CoerceNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		cleaned := nonNumeric.ReplaceAllString(val, "")
		if cleaned == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
