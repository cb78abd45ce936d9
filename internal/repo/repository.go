package repo

import (
	"context"
	"time"

	"github.com/hamed0406/statuswatch/internal/domain"
)

// ResultStore is the port the scheduler writes probe outcomes to and the
// aggregator reads from. Implementations must be safe for concurrent use;
// appends for one endpoint must land in call order.
type ResultStore interface {
	// Append records one probe outcome. Never mutates existing rows.
	Append(ctx context.Context, r *domain.ProbeResult) error

	// History returns up to limit results for an endpoint, most recent
	// first, as a snapshot at call time.
	History(ctx context.Context, name string, limit int) ([]domain.ProbeResult, error)

	// ResultsSince returns all retained results for an endpoint with
	// CheckedAt >= since, oldest first. A zero since means "all retained".
	ResultsSince(ctx context.Context, name string, since time.Time) ([]domain.ProbeResult, error)

	// Last returns the most recent result for an endpoint, or nil, nil
	// when none has been recorded yet.
	Last(ctx context.Context, name string) (*domain.ProbeResult, error)

	// Purge bulk-expires results older than the cutoff and reports how
	// many rows were removed.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}
