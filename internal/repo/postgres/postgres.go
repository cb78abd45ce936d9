package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

// Schema is keyed by endpoint name so history survives spec removal and
// re-registration under the same name.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS checks (
  id          BIGSERIAL PRIMARY KEY,
  endpoint    TEXT NOT NULL,
  checked_at  TIMESTAMPTZ NOT NULL,
  ok          BOOLEAN NOT NULL,
  status_code INTEGER NULL,
  latency_ms  BIGINT NULL,
  error       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_checks_endpoint_time ON checks (endpoint, checked_at DESC);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checks (endpoint, checked_at, ok, status_code, latency_ms, error)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.EndpointName, r.CheckedAt, r.OK, r.StatusCode, r.LatencyMS, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, name string, limit int) ([]domain.ProbeResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT checked_at, ok, status_code, latency_ms, error
		   FROM checks
		  WHERE endpoint = $1
		  ORDER BY checked_at DESC, id DESC
		  LIMIT $2`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()
	return scanResults(rows.Next, rows.Scan, rows.Err, name)
}

func (s *Store) ResultsSince(ctx context.Context, name string, since time.Time) ([]domain.ProbeResult, error) {
	q := `SELECT checked_at, ok, status_code, latency_ms, error
	        FROM checks
	       WHERE endpoint = $1
	       ORDER BY checked_at ASC, id ASC`
	args := []any{name}
	if !since.IsZero() {
		q = `SELECT checked_at, ok, status_code, latency_ms, error
		       FROM checks
		      WHERE endpoint = $1 AND checked_at >= $2
		      ORDER BY checked_at ASC, id ASC`
		args = append(args, since)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("results since: %w", err)
	}
	defer rows.Close()
	return scanResults(rows.Next, rows.Scan, rows.Err, name)
}

func (s *Store) Last(ctx context.Context, name string) (*domain.ProbeResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT checked_at, ok, status_code, latency_ms, error
		   FROM checks
		  WHERE endpoint = $1
		  ORDER BY checked_at DESC, id DESC
		  LIMIT 1`, name)
	r := domain.ProbeResult{EndpointName: name}
	if err := row.Scan(&r.CheckedAt, &r.OK, &r.StatusCode, &r.LatencyMS, &r.Error); err != nil {
		return nil, nil // no results yet
	}
	return &r, nil
}

func (s *Store) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM checks WHERE checked_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanResults(
	next func() bool,
	scan func(dest ...any) error,
	rowsErr func() error,
	name string,
) ([]domain.ProbeResult, error) {
	var out []domain.ProbeResult
	for next() {
		r := domain.ProbeResult{EndpointName: name}
		if err := scan(&r.CheckedAt, &r.OK, &r.StatusCode, &r.LatencyMS, &r.Error); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		out = append(out, r)
	}
	return out, rowsErr()
}
