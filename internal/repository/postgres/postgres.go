package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/crimedash/internal/domain"
)

// Schema creates the query log table when it does not exist
const Schema = `
	CREATE TABLE IF NOT EXISTS query_logs (
		id          UUID PRIMARY KEY,
		chart_kind  TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		area        TEXT NOT NULL,
		crime_type  TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		min_age     INTEGER NOT NULL,
		max_age     INTEGER NOT NULL,
		fallback    BOOLEAN NOT NULL,
		result_rows INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS query_logs_created_at_idx ON query_logs (created_at DESC);
`

// PostgresRepository implements domain.QueryLogRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the query log schema
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate: %w", err)
	}
	return nil
}

// SaveQueryLog persists a chart request to PostgreSQL
func (r *PostgresRepository) SaveQueryLog(ctx context.Context, entry domain.QueryLog) error {
	query := `
		INSERT INTO query_logs (
			id, chart_kind, start_date, end_date, area, crime_type, outcome,
			min_age, max_age, fallback, result_rows, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	c := entry.Criteria
	_, err := r.pool.Exec(ctx, query,
		entry.ID, string(entry.Kind), c.Start, c.End, c.Area, c.CrimeType, c.Outcome,
		c.MinAge, c.MaxAge, entry.Fallback, entry.ResultRows, entry.DurationMs, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save query log: %w", err)
	}

	return nil
}

// RecentQueryLogs retrieves the newest query logs from PostgreSQL
func (r *PostgresRepository) RecentQueryLogs(ctx context.Context, limit int) ([]domain.QueryLog, error) {
	query := `
		SELECT id, chart_kind, start_date, end_date, area, crime_type, outcome,
			   min_age, max_age, fallback, result_rows, duration_ms, created_at
		FROM query_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query logs: %w", err)
	}
	defer rows.Close()

	var results []domain.QueryLog
	for rows.Next() {
		var q domain.QueryLog
		var kind string
		err := rows.Scan(
			&q.ID, &kind, &q.Criteria.Start, &q.Criteria.End, &q.Criteria.Area,
			&q.Criteria.CrimeType, &q.Criteria.Outcome, &q.Criteria.MinAge, &q.Criteria.MaxAge,
			&q.Fallback, &q.ResultRows, &q.DurationMs, &q.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan query log row: %w", err)
		}
		q.Kind = domain.ChartKind(kind)
		results = append(results, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate query logs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
