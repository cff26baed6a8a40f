// Package textscan extracts order fields from free page text. It is
// the last-resort parser: when no structured source resolves, the raw
// visible text still usually carries an order number, a date, a total
// and item-looking lines, interleaved with navigation chrome and
// marketing copy.
package textscan

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/orderlens/order-extract-backend/internal/extract/order"
	"github.com/orderlens/order-extract-backend/internal/extract/sanitize"
)

// MaxQuantity bounds plausible purchase quantities. Values at or above
// it are almost always multipack counts, weights or unit counts misread
// as a quantity ("Multipack Quantity: 175") and are rejected wholesale
// instead of special-casing every vendor phrase.
const MaxQuantity = 100

var (
	orderNumberRe = regexp.MustCompile(`(?i)(?:order\s*#|#)\s*(\d[\d-]*)`)

	dateRe = regexp.MustCompile(`(?i)\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)

	// explicit total phrasings, tried in order before the max-amount
	// fallback kicks in
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:order\s+)?total\s*:?\s*\$\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\.\d{1,2})?)\s+total\b`),
		regexp.MustCompile(`(?i)\btotal\s+\$?\s*([\d,]+(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)\btotal\s*:\s*([\d,]+(?:\.\d{1,2})?)`),
	}

	amountRe = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`)

	// quantity phrasings in priority order
	qtyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:Qty|Quantity)\s*:?\s*(\d+)`),
		regexp.MustCompile(`\b(\d+)\s*[xX]\b`),
		regexp.MustCompile(`\((\d+)\)\s*$`),
	}
)

// DefaultNonItemMarkers matches lines that carry a dollar amount but
// are order chrome rather than items: totals, charge breakdowns,
// fulfillment status headers, "+8" overflow badges and action links.
// The list is configuration; these are the defaults for the known
// layout.
var DefaultNonItemMarkers = []string{
	`(?i)^(?:order\s+)?total\b`,
	`(?i)^subtotal\b`,
	`(?i)^tax(?:es)?\b`,
	`(?i)^tip\b`,
	`(?i)^(?:delivery|shipping)\b`,
	`(?i)^(?:delivered|shipped|arrives|arriving|picked\s+up|pickup|canceled|cancelled)\b`,
	`(?i)^order\s*#`,
	`^\+\d+$`,
	`(?i)^(?:view|track|start|return|reorder|buy|add|save|invoice|receipt|details)\b`,
	`(?i)^free\b`,
}

// Parser performs regex-driven extraction over free text. Lines
// matching any of the non-item markers are never considered items.
type Parser struct {
	sanitizer      *sanitize.Sanitizer
	nonItemMarkers []*regexp.Regexp
	now            func() time.Time
}

// New creates a parser. Marker patterns that fail to compile are
// skipped: a bad configured pattern should cost that one filter, not
// the whole strategy.
func New(s *sanitize.Sanitizer, nonItemMarkers []string) *Parser {
	p := &Parser{sanitizer: s, now: time.Now}
	for _, m := range nonItemMarkers {
		re, err := regexp.Compile(m)
		if err != nil {
			continue
		}
		p.nonItemMarkers = append(p.nonItemMarkers, re)
	}
	return p
}

// OrderNumber returns the first order-number match ("Order #123" or a
// bare "#123").
func (p *Parser) OrderNumber(text string) (string, bool) {
	m := orderNumberRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// OrderDate returns the first month-name date in the text. Listings
// routinely omit the year for orders placed in the current one, so a
// match without a 4-digit year gets the current year appended.
func (p *Parser) OrderDate(text string) (string, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	matched := strings.TrimSpace(m[0])
	if m[1] == "" {
		matched = matched + ", " + strconv.Itoa(p.now().Year())
	}
	return matched, true
}

// OrderTotal resolves the order total from explicit "Total" phrasings
// first. When no labeled total exists it falls back to the maximum
// dollar amount anywhere in the text: in unstructured listings the
// grand total is usually the largest single price on the page. The
// fallback is a heuristic, not a guarantee; it is wrong when a single
// expensive item legitimately exceeds the blended total, and that is a
// known limitation rather than something to silently correct.
func (p *Parser) OrderTotal(text string) (float64, bool) {
	for _, re := range totalPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, ok := parseAmount(m[1]); ok {
				return n, true
			}
		}
	}

	var max float64
	found := false
	for _, m := range amountRe.FindAllStringSubmatch(text, -1) {
		n, ok := parseAmount(m[1])
		if !ok {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	return max, found
}

// Quantity tries the quantity phrasings in priority order and accepts
// the first candidate inside the plausibility bound 0 < n < MaxQuantity.
// An out-of-bound candidate falls through to the next phrasing instead
// of winning on pattern priority alone.
func (p *Parser) Quantity(text string) (int, bool) {
	for _, re := range qtyPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n > 0 && n < MaxQuantity {
				return n, true
			}
		}
	}
	return 0, false
}

// Items splits the text into lines and emits a candidate item for every
// line that carries both descriptive text and a dollar amount, skipping
// lines matching a non-item marker. Item price is the first amount on
// the line; quantity defaults to 1 when no plausible phrase matches.
func (p *Parser) Items(text string) []order.OrderItem {
	var items []order.OrderItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || p.isNonItemLine(line) {
			continue
		}

		m := amountRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, ok := parseAmount(m[1])
		if !ok || price < 0 {
			continue
		}

		name := p.sanitizer.Clean(line)
		if len(name) <= order.MinNameLength {
			continue
		}

		qty, ok := p.Quantity(line)
		if !ok {
			qty = 1
		}

		items = append(items, order.OrderItem{
			Name:     name,
			Price:    price,
			Quantity: qty,
		})
	}
	return items
}

// FirstAmount returns the first dollar amount in the text. Within a
// single item's text the leading amount is the current price; "Was"
// anchors and unit prices trail it.
func (p *Parser) FirstAmount(text string) (float64, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1])
}

// ParseOrder assembles a best-effort order from a text block. The
// result may be missing its number or date; the validator downstream
// decides whether it is emitted.
func (p *Parser) ParseOrder(text string) order.Order {
	var o order.Order
	if num, ok := p.OrderNumber(text); ok {
		o.OrderNumber = num
	}
	if date, ok := p.OrderDate(text); ok {
		o.OrderDate = date
	}
	if total, ok := p.OrderTotal(text); ok {
		o.OrderTotal = order.Amount(total)
	}
	o.Items = p.Items(text)
	return o
}

func (p *Parser) isNonItemLine(line string) bool {
	for _, re := range p.nonItemMarkers {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// parseAmount parses a matched dollar figure like "1,234.56".
func parseAmount(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
