// Package page models the page being extracted from as an injected
// read-only capability. The pipeline never touches ambient globals or a
// live DOM directly; everything it can see arrives through a Context,
// so tests run against fixtures instead of a browser.
package page

import (
	"context"
	"time"
)

// Element is one DOM node the pipeline can inspect.
type Element interface {
	// Text returns the element's visible text content.
	Text() string

	// Attr returns the named attribute.
	Attr(name string) (string, bool)

	// Attrs returns all attributes on the element.
	Attrs() map[string]string

	// Find selects descendant elements by CSS selector.
	Find(selector string) []Element
}

// Context is the read-only window onto the current page. The page may
// mutate underneath it mid-call; callers tolerate torn reads by
// validating whatever they got rather than assuming a consistent
// snapshot.
type Context interface {
	// ReadGlobal returns a named embedded page state object, already
	// decoded into a generic tree.
	ReadGlobal(name string) (any, bool)

	// Query selects elements by CSS selector.
	Query(selector string) []Element

	// BodyText returns the visible text of the page body.
	BodyText() string

	// Click simulates activating the first element matching the
	// selector, reporting whether anything was there to click.
	Click(selector string) bool

	// WaitForChange blocks until the DOM observably changes, the
	// timeout elapses, or ctx is cancelled, reporting whether a change
	// was observed. Never a busy loop.
	WaitForChange(ctx context.Context, timeout time.Duration) bool
}
