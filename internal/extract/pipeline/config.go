package pipeline

import (
	"time"

	"github.com/orderlens/order-extract-backend/internal/extract/textscan"
)

// Selectors lists the CSS selectors for each structural role on the
// page, each in priority order: the first selector that matches
// anything wins for its role.
type Selectors struct {
	Order       []string
	Item        []string
	ProductName []string
	ProductLink []string
	Expand      []string
}

// Config carries everything tunable about the pipeline: selector lists,
// global names, filter keywords and the settle bound. The page layout
// changes without notice, so none of these are code constants.
type Config struct {
	// GlobalStateNames are candidate names for the embedded "initial
	// state" store object, tried in order.
	GlobalStateNames []string

	// PageDataNames are candidate names for the framework page-data
	// object, tried in order.
	PageDataNames []string

	// StatePaths are the exact key-paths handed to the tree parser.
	// Nil means the parser's defaults.
	StatePaths [][]string

	Selectors Selectors

	// FilterKeywords mark sanitized item names as page chrome.
	FilterKeywords []string

	// NonItemMarkers are regexes for text lines that carry a dollar
	// amount but are not items.
	NonItemMarkers []string

	// SettleWait bounds the pause after triggering DOM expansion.
	SettleWait time.Duration
}

// DefaultConfig returns the configuration for the known page layout.
func DefaultConfig() Config {
	return Config{
		GlobalStateNames: []string{"__INITIAL_STATE__", "__REDUX_STATE__"},
		PageDataNames:    []string{"__NEXT_DATA__", "__PAGE_DATA__"},
		Selectors: Selectors{
			Order: []string{
				"[data-order-id]",
				".order-card",
				"[class*='order-card']",
				".order",
			},
			Item: []string{
				".item-row",
				".order-item",
				"[data-item-id]",
				"[class*='line-item']",
			},
			ProductName: []string{
				".item-name",
				".product-name",
				"[data-automation-id='product-title']",
				"a[href*='/ip/']",
			},
			ProductLink: []string{
				"a.item-link",
				"a[href*='/ip/']",
				"a[href*='/product/']",
			},
			Expand: []string{
				"button.expand-details",
				"button[aria-label*='details']",
				"[aria-expanded='false']",
			},
		},
		FilterKeywords: []string{
			"Sign in",
			"Sign In",
			"My account",
			"My Account",
			"Customer service",
			"Gift card",
			"Reorder",
			"Track order",
			"Start a return",
			"View details",
		},
		NonItemMarkers: textscan.DefaultNonItemMarkers,
		SettleWait:     1500 * time.Millisecond,
	}
}
