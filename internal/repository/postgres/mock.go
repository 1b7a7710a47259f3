package postgres

import (
	"context"
	"sync"

	"github.com/smartcity/crimedash/internal/domain"
)

// MockRepository implements domain.QueryLogRepository in memory for
// testing/demo mode
type MockRepository struct {
	mu      sync.Mutex
	entries []domain.QueryLog
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SaveQueryLog keeps the entry in memory
func (r *MockRepository) SaveQueryLog(ctx context.Context, entry domain.QueryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// RecentQueryLogs returns the newest entries first
func (r *MockRepository) RecentQueryLogs(ctx context.Context, limit int) ([]domain.QueryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]domain.QueryLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, r.entries[i])
	}
	return results, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
