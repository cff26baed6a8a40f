package storage

import (
	"encoding/json"
	"time"

	"github.com/orderlens/order-extract-backend/internal/extract/order"
)

// ExtractionRun records one pass of the pipeline over a page.
type ExtractionRun struct {
	ID          string    `json:"id"` // UUID
	CreatedAt   time.Time `json:"created_at"`
	SourceURL   string    `json:"source_url,omitempty"`
	Strategy    string    `json:"strategy"` // winning state name, or NOT_FOUND
	OrderCount  int       `json:"order_count"`
	NewOrders   int       `json:"new_orders"`
	Duplicates  int       `json:"duplicates"`
	DurationMS  int64     `json:"duration_ms"`
	ErrorDetail string    `json:"error_detail,omitempty"`
}

// OrderRecord is a processed order as persisted. The order number is
// the natural key; re-extracting the same order updates last_seen_at
// without creating a second row.
type OrderRecord struct {
	ID          int64     `json:"id"`
	OrderNumber string    `json:"order_number"`
	OrderDate   string    `json:"order_date"`
	OrderTotal  *float64  `json:"order_total,omitempty"`
	Tax         *float64  `json:"tax,omitempty"`
	Delivery    *float64  `json:"delivery_charges,omitempty"`
	Tip         *float64  `json:"tip,omitempty"`
	ItemCount   int       `json:"item_count"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	RunID       string    `json:"run_id,omitempty"`

	// Items stored as JSON
	Items     []order.OrderItem `json:"items"`
	ItemsJSON string            `json:"-"` // For DB storage
}

// RecordFromOrder builds an OrderRecord from an extracted order.
func RecordFromOrder(o order.Order, runID string) *OrderRecord {
	now := time.Now().UTC()
	return &OrderRecord{
		OrderNumber: o.OrderNumber,
		OrderDate:   o.OrderDate,
		OrderTotal:  o.OrderTotal,
		Tax:         o.Tax,
		Delivery:    o.DeliveryCharges,
		Tip:         o.Tip,
		ItemCount:   len(o.Items),
		FirstSeenAt: now,
		LastSeenAt:  now,
		RunID:       runID,
		Items:       o.Items,
	}
}

// MarshalItems serializes the item list for DB storage.
func (r *OrderRecord) MarshalItems() string {
	if len(r.Items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(r.Items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Stats contains aggregate statistics over stored orders and runs.
type Stats struct {
	TotalOrders       int            `json:"total_orders"`
	TotalRuns         int            `json:"total_runs"`
	TotalAmount       float64        `json:"total_amount"`
	AverageOrderTotal float64        `json:"average_order_total"`
	TotalItems        int            `json:"total_items"`
	StrategyCounts    map[string]int `json:"strategy_counts"`
}
