package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	OrderRepository
	RunRepository
	Close() error
}

// OrderRepository handles processed order records
type OrderRepository interface {
	// SaveOrder saves or updates an order record keyed by order number
	SaveOrder(record *OrderRecord) error

	// GetOrder retrieves a record by order number; nil when absent
	GetOrder(orderNumber string) (*OrderRecord, error)

	// IsProcessed checks if an order number has been stored before
	IsProcessed(orderNumber string) bool

	// ListOrders returns stored orders matching the given filters with pagination
	ListOrders(filters OrderFilters) (*OrderListResult, error)

	// GetStats returns aggregate statistics
	GetStats() (*Stats, error)
}

// OrderFilters defines filters for listing orders
type OrderFilters struct {
	RunID     string // Filter by extraction run (empty = all)
	Limit     int    // Max results (0 = default 50)
	Offset    int    // Pagination offset
	OrderDesc bool   // Sort by last_seen_at descending
}

// OrderListResult contains paginated order results
type OrderListResult struct {
	Orders     []*OrderRecord `json:"orders"`
	TotalCount int            `json:"total_count"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// RunRepository handles extraction run tracking
type RunRepository interface {
	// SaveRun persists a completed extraction run
	SaveRun(run *ExtractionRun) error

	// GetRun retrieves a run by ID; nil when absent
	GetRun(id string) (*ExtractionRun, error)

	// ListRuns returns recent runs, newest first
	ListRuns(limit int) ([]ExtractionRun, error)
}
