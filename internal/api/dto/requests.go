package dto

import "encoding/json"

// ExtractRequest is the payload for POST /api/extract. HTML is the
// captured page source; Globals carries any serialized page globals the
// capturing side managed to read (e.g. __INITIAL_STATE__), keyed by
// variable name.
type ExtractRequest struct {
	HTML          string                     `json:"html"`
	Globals       map[string]json.RawMessage `json:"globals,omitempty"`
	SourceURL     string                     `json:"sourceUrl,omitempty"`
	MarkProcessed bool                       `json:"markProcessed,omitempty"`
}
