package storage

import (
	"sort"
	"strings"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	orders map[string]*OrderRecord
	runs   map[string]*ExtractionRun

	// Hooks for test assertions
	SaveOrderCalled   bool
	LastSavedOrder    *OrderRecord
	GetOrderCalled    bool
	IsProcessedCalled bool
	SaveRunCalled     bool
	LastSavedRun      *ExtractionRun

	// Error injection for testing error paths
	SaveOrderErr error
	GetOrderErr  error
	SaveRunErr   error
	ListRunsErr  error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		orders: make(map[string]*OrderRecord),
		runs:   make(map[string]*ExtractionRun),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveOrder saves a record to the in-memory map
func (m *MockRepository) SaveOrder(record *OrderRecord) error {
	m.SaveOrderCalled = true
	m.LastSavedOrder = record
	if m.SaveOrderErr != nil {
		return m.SaveOrderErr
	}

	// Deep copy to avoid test mutations
	copied := *record
	if existing, ok := m.orders[record.OrderNumber]; ok {
		copied.FirstSeenAt = existing.FirstSeenAt
		copied.ID = existing.ID
	} else {
		copied.ID = int64(len(m.orders) + 1)
	}
	m.orders[record.OrderNumber] = &copied
	return nil
}

// GetOrder retrieves a record from the in-memory map
func (m *MockRepository) GetOrder(orderNumber string) (*OrderRecord, error) {
	m.GetOrderCalled = true
	if m.GetOrderErr != nil {
		return nil, m.GetOrderErr
	}
	record, ok := m.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	return record, nil
}

// IsProcessed checks if an order number has been stored before
func (m *MockRepository) IsProcessed(orderNumber string) bool {
	m.IsProcessedCalled = true
	_, ok := m.orders[orderNumber]
	return ok
}

// ListOrders returns orders matching the given filters with pagination
func (m *MockRepository) ListOrders(filters OrderFilters) (*OrderListResult, error) {
	var matching []*OrderRecord
	for _, r := range m.orders {
		if filters.RunID != "" && r.RunID != filters.RunID {
			continue
		}
		matching = append(matching, r)
	}
	sort.Slice(matching, func(i, j int) bool {
		if filters.OrderDesc {
			return matching[i].LastSeenAt.After(matching[j].LastSeenAt)
		}
		return matching[i].LastSeenAt.Before(matching[j].LastSeenAt)
	})

	limit := filters.Limit
	if limit == 0 {
		limit = 50
	}

	total := len(matching)
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &OrderListResult{
		Orders:     matching[start:end],
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}, nil
}

// GetStats returns statistics over the in-memory data
func (m *MockRepository) GetStats() (*Stats, error) {
	stats := &Stats{
		StrategyCounts: make(map[string]int),
	}

	for _, r := range m.orders {
		stats.TotalOrders++
		if r.OrderTotal != nil {
			stats.TotalAmount += *r.OrderTotal
		}
		stats.TotalItems += r.ItemCount
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderTotal = stats.TotalAmount / float64(stats.TotalOrders)
	}

	for _, run := range m.runs {
		stats.TotalRuns++
		stats.StrategyCounts[run.Strategy]++
	}

	return stats, nil
}

// SaveRun persists an extraction run
func (m *MockRepository) SaveRun(run *ExtractionRun) error {
	m.SaveRunCalled = true
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

// GetRun retrieves a run by ID
func (m *MockRepository) GetRun(id string) (*ExtractionRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return run, nil
}

// ListRuns returns runs, newest first
func (m *MockRepository) ListRuns(limit int) ([]ExtractionRun, error) {
	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}
	if limit == 0 {
		limit = 20
	}

	var runs []ExtractionRun
	for _, r := range m.runs {
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return strings.Compare(runs[i].ID, runs[j].ID) < 0
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Helper methods for test setup

// AddOrder adds a record directly (for test setup)
func (m *MockRepository) AddOrder(record *OrderRecord) {
	m.orders[record.OrderNumber] = record
}

// GetAllOrders returns all stored records (for assertions)
func (m *MockRepository) GetAllOrders() []*OrderRecord {
	result := make([]*OrderRecord, 0, len(m.orders))
	for _, r := range m.orders {
		result = append(result, r)
	}
	return result
}

// Reset clears all data and flags (for reuse between tests)
func (m *MockRepository) Reset() {
	m.orders = make(map[string]*OrderRecord)
	m.runs = make(map[string]*ExtractionRun)
	m.SaveOrderCalled = false
	m.LastSavedOrder = nil
	m.GetOrderCalled = false
	m.IsProcessedCalled = false
	m.SaveRunCalled = false
	m.LastSavedRun = nil
	m.SaveOrderErr = nil
	m.GetOrderErr = nil
	m.SaveRunErr = nil
	m.ListRunsErr = nil
}
