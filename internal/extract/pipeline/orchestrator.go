// Package pipeline sequences the extraction strategies over the
// candidate sources of a page, short-circuiting on the first strategy
// that yields validated orders.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/orderlens/order-extract-backend/internal/extract/order"
	"github.com/orderlens/order-extract-backend/internal/extract/page"
	"github.com/orderlens/order-extract-backend/internal/extract/sanitize"
	"github.com/orderlens/order-extract-backend/internal/extract/statetree"
	"github.com/orderlens/order-extract-backend/internal/extract/textscan"
)

// State identifies one step of the extraction state machine. States are
// visited strictly in declaration order; the machine stops at the first
// state whose strategy yields one or more validated orders.
type State int

const (
	StateTryTreeSource1 State = iota
	StateTryTreeSource2
	StateTryScriptJSON
	StateTryDOMStructured
	StateTryDOMTextFallback
	StateTryPageJSONAttributes
	StateFound
	StateNotFound
)

var stateNames = map[State]string{
	StateTryTreeSource1:        "TRY_TREE_SOURCE_1",
	StateTryTreeSource2:        "TRY_TREE_SOURCE_2",
	StateTryScriptJSON:         "TRY_SCRIPT_JSON",
	StateTryDOMStructured:      "TRY_DOM_STRUCTURED",
	StateTryDOMTextFallback:    "TRY_DOM_TEXT_FALLBACK",
	StateTryPageJSONAttributes: "TRY_PAGE_JSON_ATTRIBUTES",
	StateFound:                 "FOUND",
	StateNotFound:              "NOT_FOUND",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// strategyResult is what one strategy produced. materialized records
// that the strategy found its source at all (an order array, matching
// containers, an order-number-bearing text region), even when zero
// orders survived validation. The distinction is what lets the caller
// tell "extracted zero orders" from "extraction failed".
type strategyResult struct {
	orders       []order.Order
	materialized bool
}

type strategy struct {
	state State
	run   func(ctx context.Context) strategyResult
}

// Orchestrator runs the extraction state machine against one page.
// It holds no state between calls; every Extract builds its result from
// scratch.
type Orchestrator struct {
	cfg       Config
	page      page.Context
	logger    *slog.Logger
	locator   *Locator
	trees     *statetree.Parser
	text      *textscan.Parser
	sanitizer *sanitize.Sanitizer
	validator *order.Validator

	strategies []strategy
	expanded   bool
	lastState  State
}

// New wires an orchestrator for the given page. A nil logger falls back
// to slog.Default.
func New(cfg Config, pg page.Context, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	s := sanitize.New(cfg.FilterKeywords)
	o := &Orchestrator{
		cfg:       cfg,
		page:      pg,
		logger:    logger.With(slog.String("system", "pipeline")),
		trees:     statetree.New(cfg.StatePaths, s),
		text:      textscan.New(s, cfg.NonItemMarkers),
		sanitizer: s,
		validator: order.NewValidator(cfg.FilterKeywords),
	}
	o.locator = NewLocator(pg, &o.cfg)

	o.strategies = []strategy{
		{StateTryTreeSource1, func(ctx context.Context) strategyResult {
			return o.tryGlobalTrees(o.cfg.GlobalStateNames)
		}},
		{StateTryTreeSource2, func(ctx context.Context) strategyResult {
			return o.tryGlobalTrees(o.cfg.PageDataNames)
		}},
		{StateTryScriptJSON, func(ctx context.Context) strategyResult {
			return o.tryScriptJSON()
		}},
		{StateTryDOMStructured, o.tryDOMStructured},
		{StateTryDOMTextFallback, func(ctx context.Context) strategyResult {
			return o.tryDOMText()
		}},
		{StateTryPageJSONAttributes, func(ctx context.Context) strategyResult {
			return o.tryAttributeJSON()
		}},
	}
	return o
}

// Extract runs the strategies in order and returns the first validated
// batch. It returns nil when no extraction attempt materialized, and a
// Result with zero orders when a source was found but held none; the
// two outcomes are deliberately distinct.
func (o *Orchestrator) Extract(ctx context.Context) *order.Result {
	materialized := false
	o.expanded = false
	o.lastState = StateNotFound

	for _, st := range o.strategies {
		if ctx.Err() != nil {
			o.logger.Warn("extraction cancelled", slog.String("state", st.state.String()))
			return nil
		}

		res := st.run(ctx)
		valid := o.validator.Filter(res.orders)

		if len(valid) > 0 {
			o.lastState = st.state
			o.logger.Info("extraction found orders",
				slog.String("state", st.state.String()),
				slog.Int("orders", len(valid)),
				slog.Int("rejected", len(res.orders)-len(valid)),
			)
			return &order.Result{Orders: valid}
		}

		if res.materialized {
			materialized = true
		}
		o.logger.Debug("strategy yielded nothing, advancing",
			slog.String("state", st.state.String()),
			slog.Bool("materialized", res.materialized),
			slog.Int("candidates", len(res.orders)),
		)
	}

	if materialized {
		o.logger.Info("sources materialized but held no valid orders")
		return &order.Result{Orders: []order.Order{}}
	}
	o.logger.Info("no extraction attempt materialized", slog.String("state", StateNotFound.String()))
	return nil
}

// LastState reports how the most recent Extract call ended: the state
// whose strategy produced the returned orders, or NOT_FOUND.
func (o *Orchestrator) LastState() State {
	return o.lastState
}

// tryGlobalTrees parses every present global under the candidate names.
func (o *Orchestrator) tryGlobalTrees(names []string) strategyResult {
	var res strategyResult
	for _, tree := range o.locator.GlobalTrees(names) {
		orders, located := o.trees.Parse(tree.Root)
		if !located {
			continue
		}
		res.materialized = true
		res.orders = append(res.orders, orders...)
	}
	return res
}

// tryScriptJSON carves JSON payloads out of marker-bearing inline
// scripts. A payload that fails to parse is a malformed source: it
// yielded nothing, and the scan moves on.
func (o *Orchestrator) tryScriptJSON() strategyResult {
	var res strategyResult
	for _, text := range o.locator.ScriptTexts() {
		payload, ok := carveJSON(text)
		if !ok {
			continue
		}
		var root any
		if err := json.Unmarshal([]byte(payload), &root); err != nil {
			continue
		}
		orders, located := o.trees.Parse(root)
		if !located {
			continue
		}
		res.materialized = true
		res.orders = append(res.orders, orders...)
	}
	return res
}

// tryDOMStructured scans configured order containers, after a one-time
// best-effort expansion of any collapsed details section. Expansion is
// a single attempt: if the settle wait elapses without the DOM
// revealing anything, the scan proceeds with what is present.
func (o *Orchestrator) tryDOMStructured(ctx context.Context) strategyResult {
	o.expandOnce(ctx)

	containers, selector := o.locator.OrderContainers()
	if len(containers) == 0 {
		return strategyResult{}
	}

	res := strategyResult{materialized: true}
	o.logger.Debug("scanning order containers",
		slog.String("selector", selector),
		slog.Int("count", len(containers)),
	)
	for _, el := range containers {
		res.orders = append(res.orders, o.parseOrderElement(el))
	}
	return res
}

// tryDOMText runs the text parser over the whole visible body.
func (o *Orchestrator) tryDOMText() strategyResult {
	text := o.locator.BodyText()
	if strings.TrimSpace(text) == "" {
		return strategyResult{}
	}

	parsed := o.text.ParseOrder(text)
	return strategyResult{
		orders:       []order.Order{parsed},
		materialized: parsed.OrderNumber != "" || parsed.OrderDate != "",
	}
}

// tryAttributeJSON parses JSON-looking data attributes as state trees.
func (o *Orchestrator) tryAttributeJSON() strategyResult {
	var res strategyResult
	for _, payload := range o.locator.AttributeJSON() {
		var root any
		if err := json.Unmarshal([]byte(payload), &root); err != nil {
			continue
		}
		orders, located := o.trees.Parse(root)
		if !located {
			continue
		}
		res.materialized = true
		res.orders = append(res.orders, orders...)
	}
	return res
}

// expandOnce clicks the first matching expansion affordance and waits,
// bounded, for the DOM to settle. One attempt per extraction; a page
// that ignores the click is taken as-is.
func (o *Orchestrator) expandOnce(ctx context.Context) {
	if o.expanded {
		return
	}
	o.expanded = true

	for _, sel := range o.cfg.Selectors.Expand {
		if !o.page.Click(sel) {
			continue
		}
		changed := o.page.WaitForChange(ctx, o.cfg.SettleWait)
		o.logger.Debug("expansion triggered",
			slog.String("selector", sel),
			slog.Bool("dom_changed", changed),
		)
		return
	}
}

// parseOrderElement extracts one order from a structured DOM container,
// preferring explicit name/link elements and falling back to line
// heuristics over the container text.
func (o *Orchestrator) parseOrderElement(el page.Element) order.Order {
	text := el.Text()

	var ord order.Order
	if num, ok := o.text.OrderNumber(text); ok {
		ord.OrderNumber = num
	}
	if date, ok := o.text.OrderDate(text); ok {
		ord.OrderDate = date
	}
	if total, ok := o.text.OrderTotal(text); ok {
		ord.OrderTotal = order.Amount(total)
	}

	var itemEls []page.Element
	for _, sel := range o.cfg.Selectors.Item {
		if found := el.Find(sel); len(found) > 0 {
			itemEls = found
			break
		}
	}

	if len(itemEls) == 0 {
		ord.Items = o.text.Items(text)
		return ord
	}

	for _, itemEl := range itemEls {
		if it, ok := o.parseItemElement(itemEl); ok {
			ord.Items = append(ord.Items, it)
		}
	}
	return ord
}

// parseItemElement extracts one item from an item container element.
func (o *Orchestrator) parseItemElement(el page.Element) (order.OrderItem, bool) {
	itemText := el.Text()

	var raw string
	for _, sel := range o.cfg.Selectors.ProductName {
		if found := el.Find(sel); len(found) > 0 {
			raw = found[0].Text()
			break
		}
	}
	if raw == "" {
		// first line of the item text is the best name candidate
		raw, _, _ = strings.Cut(strings.TrimSpace(itemText), "\n")
	}

	name := o.sanitizer.Clean(raw)
	if name == "" {
		return order.OrderItem{}, false
	}

	it := order.OrderItem{Name: name, Quantity: 1}
	if price, ok := o.text.FirstAmount(itemText); ok && price >= 0 {
		it.Price = price
	}
	if qty, ok := o.text.Quantity(itemText); ok {
		it.Quantity = qty
	}
	for _, sel := range o.cfg.Selectors.ProductLink {
		found := el.Find(sel)
		if len(found) == 0 {
			continue
		}
		if href, ok := found[0].Attr("href"); ok && href != "" {
			it.ProductURL = href
			break
		}
	}
	return it, true
}

// carveJSON slices the serialized object out of a script body like
// "window.__INITIAL_STATE__ = {...};".
func carveJSON(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	var end int
	if text[start] == '{' {
		end = strings.LastIndex(text, "}")
	} else {
		end = strings.LastIndex(text, "]")
	}
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}
