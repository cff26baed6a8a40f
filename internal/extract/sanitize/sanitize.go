// Package sanitize cleans candidate product names scraped out of order
// pages. Raw item text arrives interleaved with quantity badges, price
// history, unit-price-per-weight fragments and promotional noise; the
// sanitizer strips all of it through a fixed, ordered rule pipeline.
package sanitize

import (
	"regexp"
	"strings"
)

// Removal rules, applied strictly in this order. The ordering is
// load-bearing: the "Was $X.XX" anchor must be removed before trailing
// dollar amounts, otherwise the "Was" literal is left glued to the
// residual name.
var (
	// "Qty 2", "ShoppedQty 3", "Qty: 4" at the end of the text
	qtyMarker = regexp.MustCompile(`(?i)\s*(?:Shopped\s*Qty|Qty)\s*:?\s*\d+\s*$`)

	// "Multipack Quantity: 6" and everything after it
	multipack = regexp.MustCompile(`(?i)\s*Multipack\s+Quantity\s*:.*$`)

	// "Was $5.99" price anchors, anywhere in the text
	wasPrice = regexp.MustCompile(`(?i)\s*Was\s+\$\s*[\d,]+(?:\.\d{1,2})?`)

	// one or more trailing dollar amounts: "... $3.99" or "... $5.99 $3.99"
	trailingAmount = regexp.MustCompile(`(?:\s*\$\s*[\d,]+(?:\.\d{1,2})?)+\s*$`)

	// trailing unit prices per weight or count: "10.5 ¢/oz", "$0.25/fl oz"
	unitPrice = regexp.MustCompile(`(?i)\s*(?:\$\s*[\d.,]+|[\d.,]+\s*¢)\s*/\s*(?:fl\s+)?(?:oz|lb|lbs|ea|each|ct|count|gal|qt|pt|l|ml|g|kg)\b\.?\s*$`)

	// "Weight-adjusted ..." suffixes on sold-by-weight items
	weightAdjusted = regexp.MustCompile(`(?i)\s*Weight-adjusted\b.*$`)

	// "Count: 12" suffixes
	countSuffix = regexp.MustCompile(`(?i)\s*Count\s*:\s*\d+\s*$`)

	innerSpace = regexp.MustCompile(`\s+`)
)

// zero-width characters the page uses as invisible separators
var zeroWidthReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// Sanitizer removes pricing/quantity noise from item text and rejects
// text that is administrative page chrome rather than a product.
type Sanitizer struct {
	filterKeywords []string
}

// New creates a sanitizer. Text still containing one of the filter
// keywords after cleanup (case-sensitive substring match) is not a
// product and is reported as an empty string.
func New(filterKeywords []string) *Sanitizer {
	return &Sanitizer{filterKeywords: filterKeywords}
}

// Clean runs the removal pipeline and returns the residual name,
// trimmed and whitespace-normalized. Clean is idempotent: a cleaned
// name passes through unchanged.
func (s *Sanitizer) Clean(raw string) string {
	text := raw

	// Re-run the rule sequence until the text stops changing so that
	// stacked suffixes ("... $3.99 10.5¢/oz") peel off fully. The
	// pass count is bounded; each pass keeps the rule order intact.
	for pass := 0; pass < 4; pass++ {
		before := text
		text = qtyMarker.ReplaceAllString(text, "")
		text = multipack.ReplaceAllString(text, "")
		text = wasPrice.ReplaceAllString(text, "")
		text = trailingAmount.ReplaceAllString(text, "")
		text = unitPrice.ReplaceAllString(text, "")
		text = weightAdjusted.ReplaceAllString(text, "")
		text = countSuffix.ReplaceAllString(text, "")
		if text == before {
			break
		}
	}

	text = zeroWidthReplacer.Replace(text)
	text = strings.TrimSpace(innerSpace.ReplaceAllString(text, " "))

	for _, kw := range s.filterKeywords {
		if strings.Contains(text, kw) {
			return ""
		}
	}
	return text
}
