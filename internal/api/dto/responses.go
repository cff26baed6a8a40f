package dto

import (
	"time"

	"github.com/orderlens/order-extract-backend/internal/extract/order"
)

// ExtractResponse reports one extraction pass. Orders is null when no
// source materialized and an empty array when a source was found but
// held no valid orders; clients rely on the distinction.
type ExtractResponse struct {
	RunID      string        `json:"runId"`
	Found      bool          `json:"found"`
	Strategy   string        `json:"strategy"`
	Orders     []order.Order `json:"orders"`
	NewOrders  int           `json:"newOrders"`
	Duplicates int           `json:"duplicates"`
	DurationMS int64         `json:"durationMs"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
}
