package pipeline

import (
	"sort"
	"strings"

	"github.com/orderlens/order-extract-backend/internal/extract/page"
)

// Locator enumerates the candidate raw-data sources on the current
// page, in fixed priority order: embedded globals, inline script JSON,
// structured DOM containers, then raw body text. It only hands off
// typed raw material; parsing is the strategies' job.
type Locator struct {
	page page.Context
	cfg  *Config
}

// NewLocator creates a locator over the given page.
func NewLocator(pg page.Context, cfg *Config) *Locator {
	return &Locator{page: pg, cfg: cfg}
}

// NamedTree is a global state object that was present on the page.
type NamedTree struct {
	Name string
	Root any
}

// GlobalTrees returns the globals present under the given candidate
// names, in candidate order.
func (l *Locator) GlobalTrees(names []string) []NamedTree {
	var trees []NamedTree
	for _, name := range names {
		if root, ok := l.page.ReadGlobal(name); ok {
			trees = append(trees, NamedTree{Name: name, Root: root})
		}
	}
	return trees
}

// ScriptTexts returns the bodies of inline script elements that mention
// one of the known global markers, the places serialized state hides
// when the globals themselves are unreadable.
func (l *Locator) ScriptTexts() []string {
	markers := make([]string, 0, len(l.cfg.GlobalStateNames)+len(l.cfg.PageDataNames))
	markers = append(markers, l.cfg.GlobalStateNames...)
	markers = append(markers, l.cfg.PageDataNames...)

	var texts []string
	for _, el := range l.page.Query("script") {
		text := el.Text()
		for _, marker := range markers {
			if strings.Contains(text, marker) {
				texts = append(texts, text)
				break
			}
		}
	}
	return texts
}

// OrderContainers returns the elements matched by the first order
// selector that matches anything, along with the winning selector.
func (l *Locator) OrderContainers() ([]page.Element, string) {
	for _, sel := range l.cfg.Selectors.Order {
		if els := l.page.Query(sel); len(els) > 0 {
			return els, sel
		}
	}
	return nil, ""
}

// BodyText returns the raw visible page text.
func (l *Locator) BodyText() string {
	return l.page.BodyText()
}

// AttributeJSON returns data-attribute values that look like serialized
// JSON objects or arrays.
func (l *Locator) AttributeJSON() []string {
	var candidates []string
	for _, el := range l.page.Query("*") {
		attrs := el.Attrs()
		keys := make([]string, 0, len(attrs))
		for key := range attrs {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if !strings.HasPrefix(key, "data-") {
				continue
			}
			trimmed := strings.TrimSpace(attrs[key])
			if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
				candidates = append(candidates, trimmed)
			}
		}
	}
	return candidates
}
