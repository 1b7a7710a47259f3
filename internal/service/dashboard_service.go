package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcity/crimedash/internal/analytics"
	"github.com/smartcity/crimedash/internal/domain"
	"github.com/smartcity/crimedash/internal/render"
)

// DashboardService filters the dataset, aggregates chart views and renders them
type DashboardService struct {
	dataset    *domain.Dataset
	repo       QueryLogRepository
	renderOpts render.Options
	now        func() time.Time

	display display
	wgBg    sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	dataset *domain.Dataset,
	repo QueryLogRepository,
	renderOpts render.Options,
) *DashboardService {
	return &DashboardService{
		dataset:    dataset,
		repo:       repo,
		renderOpts: renderOpts,
		now:        time.Now,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *DashboardService) WaitBackground() {
	s.wgBg.Wait()
}

// DefaultCriteria returns the initial filter control values
func (s *DashboardService) DefaultCriteria() domain.RawCriteria {
	return domain.DefaultRawCriteria(s.now())
}

// FilterOptions lists the selector values offered for the loaded dataset
func (s *DashboardService) FilterOptions() domain.FilterOptions {
	opts := domain.FilterOptions{
		Areas:      withAll(s.dataset.Areas()),
		CrimeTypes: withAll(s.dataset.CrimeTypes()),
		Outcomes:   withAll(s.dataset.Outcomes()),
		MinAge:     domain.MinVictimAge,
		MaxAge:     domain.MaxVictimAge,
		Records:    s.dataset.Len(),
	}
	if first, last := s.dataset.DateSpan(); !first.IsZero() {
		opts.FirstDate = first.Format(domain.DateLayout)
		opts.LastDate = last.Format(domain.DateLayout)
	}
	return opts
}

func withAll(values []string) []string {
	return append([]string{domain.AllSentinel}, values...)
}

// Chart computes the derived view of a chart kind
func (s *DashboardService) Chart(ctx context.Context, kind domain.ChartKind, raw domain.RawCriteria) (domain.ChartResult, error) {
	result, _, err := s.compute(ctx, kind, raw, false)
	return result, err
}

// ChartImage computes and renders a chart kind as PNG
func (s *DashboardService) ChartImage(ctx context.Context, kind domain.ChartKind, raw domain.RawCriteria) ([]byte, domain.ChartResult, error) {
	result, img, err := s.compute(ctx, kind, raw, true)
	return img, result, err
}

// RecentQueries returns the newest query log entries
func (s *DashboardService) RecentQueries(ctx context.Context, limit int) ([]domain.QueryLog, error) {
	return s.repo.RecentQueryLogs(ctx, limit)
}

// Health checks the query log storage
func (s *DashboardService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// compute runs filter, aggregation and optionally rendering for one request.
// ctx is checked between stages so superseded display work stops early.
func (s *DashboardService) compute(ctx context.Context, kind domain.ChartKind, raw domain.RawCriteria, withImage bool) (domain.ChartResult, []byte, error) {
	start := time.Now()

	if _, ok := kind.Info(); !ok {
		return domain.ChartResult{}, nil, fmt.Errorf("dashboard: %w %q", analytics.ErrUnknownChart, kind)
	}

	filtered := analytics.ApplyRaw(s.dataset, raw)
	if err := ctx.Err(); err != nil {
		return domain.ChartResult{}, nil, err
	}

	result, err := analytics.Compute(kind, filtered.View)
	if err != nil {
		return domain.ChartResult{}, nil, err
	}
	result.Criteria = raw
	result.FilterFallback = filtered.Fallback
	if filtered.Err != nil {
		result.FilterError = filtered.Err.Error()
	}
	if err := ctx.Err(); err != nil {
		return domain.ChartResult{}, nil, err
	}

	var img []byte
	if withImage {
		img, err = render.PNG(result, s.renderOpts)
		if err != nil {
			return result, nil, err
		}
	}

	s.logQuery(domain.QueryLog{
		ID:         uuid.New(),
		Kind:       kind,
		Criteria:   raw,
		Fallback:   filtered.Fallback,
		ResultRows: result.Total,
		DurationMs: time.Since(start).Milliseconds(),
		CreatedAt:  s.now().UTC(),
	})

	return result, img, nil
}

// logQuery persists the entry asynchronously (tracked for graceful shutdown)
func (s *DashboardService) logQuery(entry domain.QueryLog) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveQueryLog(bgCtx, entry); err != nil {
			log.Printf("Failed to save query log: %v", err)
		}
	}()
}
