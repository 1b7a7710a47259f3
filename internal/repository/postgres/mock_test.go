package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartcity/crimedash/internal/domain"
)

func TestMockRepositoryNewestFirst(t *testing.T) {
	repo := NewMockRepository()
	ctx := context.Background()

	kinds := []domain.ChartKind{domain.ChartTrend, domain.ChartWeapons, domain.ChartOutcomes}
	for i, k := range kinds {
		entry := domain.QueryLog{ID: uuid.New(), Kind: k, CreatedAt: time.Unix(int64(i), 0)}
		if err := repo.SaveQueryLog(ctx, entry); err != nil {
			t.Fatalf("SaveQueryLog: %v", err)
		}
	}

	got, err := repo.RecentQueryLogs(ctx, 2)
	if err != nil {
		t.Fatalf("RecentQueryLogs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Kind != domain.ChartOutcomes || got[1].Kind != domain.ChartWeapons {
		t.Fatalf("unexpected order: %v, %v", got[0].Kind, got[1].Kind)
	}
	if err := repo.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
