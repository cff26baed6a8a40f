package page

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot is a Context backed by a captured HTML document plus the
// serialized globals that were embedded in it. It is the fixture-side
// stand-in for a live page: static by construction, so Click never
// mutates anything and WaitForChange only ever times out.
type Snapshot struct {
	doc *goquery.Document

	mu         sync.Mutex
	rawGlobals map[string]json.RawMessage
	globals    map[string]any
}

var _ Context = (*Snapshot)(nil)

// NewSnapshot parses the captured HTML and retains the raw globals for
// lazy decoding. Globals that fail to decode simply read as absent; a
// malformed source yields nothing rather than an error.
func NewSnapshot(htmlSrc string, globals map[string]json.RawMessage) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSrc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}
	return &Snapshot{
		doc:        doc,
		rawGlobals: globals,
		globals:    make(map[string]any),
	}, nil
}

// ReadGlobal decodes and returns the named global, caching the decode.
func (s *Snapshot) ReadGlobal(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.globals[name]; ok {
		return v, true
	}
	raw, ok := s.rawGlobals[name]
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	s.globals[name] = v
	return v, true
}

// Query selects elements by CSS selector. An invalid selector selects
// nothing.
func (s *Snapshot) Query(selector string) []Element {
	return wrapSelection(s.doc.Find(selector))
}

// BodyText returns the page body's text with script and style bodies
// excluded, since those are code rather than visible text.
func (s *Snapshot) BodyText() string {
	body := s.doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	var b strings.Builder
	body.Each(func(_ int, sel *goquery.Selection) {
		visibleText(&b, sel.Nodes...)
	})
	return b.String()
}

// Click reports whether the selector matches anything. A static
// snapshot has no handlers to run, but the return value still tells the
// orchestrator whether an expansion affordance was present.
func (s *Snapshot) Click(selector string) bool {
	return s.doc.Find(selector).Length() > 0
}

// WaitForChange honors the bound and the context but a snapshot never
// changes, so the answer is always false.
func (s *Snapshot) WaitForChange(ctx context.Context, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return false
}

// negativeMarkers are phrases that indicate the capture is not a usable
// order listing: an auth wall, an error page, or an explicitly empty
// history.
var negativeMarkers = []string{
	"no orders",
	"you haven't placed any orders",
	"sign in to view",
	"session expired",
	"access denied",
	"something went wrong",
	"page not found",
}

// LooksLikeOrderPage is an advisory pre-check: it reports true when the
// body has content and carries none of the negative markers. Absence of
// a negative signal is not a positive signal, so a true here must never
// be treated as proof that extraction will succeed; the pipeline's own
// found/not-found decision stays authoritative.
func (s *Snapshot) LooksLikeOrderPage() bool {
	text := strings.ToLower(s.BodyText())
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, marker := range negativeMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

// visibleText walks the node tree appending text nodes, inserting line
// breaks at block-ish boundaries so downstream line splitting sees the
// page roughly the way a reader does.
func visibleText(b *strings.Builder, nodes ...*html.Node) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteString(" ")
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" || n.Data == "noscript" {
				continue
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				visibleText(b, c)
			}
			if isBlock(n.Data) {
				b.WriteString("\n")
			}
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				visibleText(b, c)
			}
		}
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "div", "p", "li", "tr", "br", "section", "article", "ul", "ol",
		"table", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// snapshotElement wraps a single-node goquery selection.
type snapshotElement struct {
	sel *goquery.Selection
}

func wrapSelection(sel *goquery.Selection) []Element {
	var out []Element
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &snapshotElement{sel: s})
	})
	return out
}

func (e *snapshotElement) Text() string {
	var b strings.Builder
	visibleText(&b, e.sel.Nodes...)
	return b.String()
}

func (e *snapshotElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *snapshotElement) Attrs() map[string]string {
	attrs := make(map[string]string)
	for _, n := range e.sel.Nodes {
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
	}
	return attrs
}

func (e *snapshotElement) Find(selector string) []Element {
	return wrapSelection(e.sel.Find(selector))
}
