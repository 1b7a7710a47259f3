package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/smartcity/crimedash/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS query_logs (
		id          TEXT PRIMARY KEY,
		chart_kind  TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		area        TEXT NOT NULL,
		crime_type  TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		min_age     INTEGER NOT NULL,
		max_age     INTEGER NOT NULL,
		fallback    INTEGER NOT NULL,
		result_rows INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_logs_created_at ON query_logs(created_at DESC);
`

// Repository implements domain.QueryLogRepository on an embedded SQLite file
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to migrate: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping: %w", err)
	}

	log.Printf("Query log database initialized: %s", path)
	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveQueryLog persists a chart request
func (r *Repository) SaveQueryLog(ctx context.Context, entry domain.QueryLog) error {
	query := `
		INSERT INTO query_logs (
			id, chart_kind, start_date, end_date, area, crime_type, outcome,
			min_age, max_age, fallback, result_rows, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	c := entry.Criteria
	_, err := r.db.ExecContext(ctx, query,
		entry.ID.String(), string(entry.Kind), c.Start, c.End, c.Area, c.CrimeType, c.Outcome,
		c.MinAge, c.MaxAge, entry.Fallback, entry.ResultRows, entry.DurationMs, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save query log: %w", err)
	}
	return nil
}

// RecentQueryLogs returns the newest entries first
func (r *Repository) RecentQueryLogs(ctx context.Context, limit int) ([]domain.QueryLog, error) {
	query := `
		SELECT id, chart_kind, start_date, end_date, area, crime_type, outcome,
			   min_age, max_age, fallback, result_rows, duration_ms, created_at
		FROM query_logs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query logs: %w", err)
	}
	defer rows.Close()

	var results []domain.QueryLog
	for rows.Next() {
		var (
			q         domain.QueryLog
			id, kind  string
			createdAt int64
		)
		err := rows.Scan(
			&id, &kind, &q.Criteria.Start, &q.Criteria.End, &q.Criteria.Area,
			&q.Criteria.CrimeType, &q.Criteria.Outcome, &q.Criteria.MinAge, &q.Criteria.MaxAge,
			&q.Fallback, &q.ResultRows, &q.DurationMs, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan query log row: %w", err)
		}
		if q.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("sqlite: invalid query log id %q: %w", id, err)
		}
		q.Kind = domain.ChartKind(kind)
		q.CreatedAt = time.Unix(0, createdAt).UTC()
		results = append(results, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate query logs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *Repository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}
