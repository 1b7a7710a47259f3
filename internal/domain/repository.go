package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QueryLog records one chart request
type QueryLog struct {
	ID         uuid.UUID   `json:"id"`
	Kind       ChartKind   `json:"kind"`
	Criteria   RawCriteria `json:"criteria"`
	Fallback   bool        `json:"fallback"`
	ResultRows int         `json:"result_rows"`
	DurationMs int64       `json:"duration_ms"`
	CreatedAt  time.Time   `json:"created_at"`
}

// QueryLogRepository defines the interface for query log persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type QueryLogRepository interface {
	// SaveQueryLog persists a chart request
	SaveQueryLog(ctx context.Context, entry QueryLog) error

	// RecentQueryLogs returns the newest entries first
	RecentQueryLogs(ctx context.Context, limit int) ([]QueryLog, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
