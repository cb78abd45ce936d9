package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
)

func result(name string, at time.Time, ok bool) *domain.ProbeResult {
	return &domain.ProbeResult{EndpointName: name, CheckedAt: at, OK: ok}
}

// go test ./internal/repo/postgres -run TestPostgresStore -count=1
// Requires DATABASE_URL; skipped otherwise.

func TestPostgresStore_AppendHistoryPurge(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// unique endpoint name per run to stay independent of old rows
	name := fmt.Sprintf("it-%d", time.Now().UTC().UnixNano())
	base := time.Now().UTC().Add(-3 * time.Hour).Truncate(time.Millisecond)

	for i := 0; i < 4; i++ {
		code := 200
		lat := int64(10 + i)
		r := result(name, base.Add(time.Duration(i)*time.Hour), true)
		r.StatusCode = &code
		r.LatencyMS = &lat
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	h, err := store.History(ctx, name, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h) != 2 {
		t.Fatalf("want 2 rows, got %d", len(h))
	}
	if !h[0].CheckedAt.After(h[1].CheckedAt) {
		t.Fatalf("history not most-recent-first")
	}
	if h[0].StatusCode == nil || *h[0].StatusCode != 200 {
		t.Fatalf("status code lost: %v", h[0].StatusCode)
	}

	since := base.Add(90 * time.Minute)
	rs, err := store.ResultsSince(ctx, name, since)
	if err != nil {
		t.Fatalf("ResultsSince: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("want 2 rows since cutoff, got %d", len(rs))
	}

	last, err := store.Last(ctx, name)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last == nil || !last.CheckedAt.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("unexpected last: %+v", last)
	}

	if _, err := store.Purge(ctx, base.Add(2*time.Hour)); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	rest, err := store.ResultsSince(ctx, name, time.Time{})
	if err != nil {
		t.Fatalf("ResultsSince after purge: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("want 2 survivors after purge, got %d", len(rest))
	}
}

func TestPostgresStore_LastEmptyEndpoint(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}
	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	last, err := store.Last(ctx, fmt.Sprintf("never-%d", time.Now().UnixNano()))
	if err != nil || last != nil {
		t.Fatalf("want nil, nil for empty endpoint, got %+v, %v", last, err)
	}
}
