package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/repo/memory"
)

func TestJanitor_PurgesExpiredRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()
	_ = store.Append(ctx, &domain.ProbeResult{EndpointName: "a", CheckedAt: old, OK: true})
	_ = store.Append(ctx, &domain.ProbeResult{EndpointName: "a", CheckedAt: fresh, OK: true})

	j := NewJanitor(zap.NewNop(), store, 24*time.Hour, time.Hour)

	jctx, cancel := context.WithCancel(ctx)
	go j.Run(jctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		rows, _ := store.ResultsSince(ctx, "a", time.Time{})
		if len(rows) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	rows, _ := store.ResultsSince(ctx, "a", time.Time{})
	if len(rows) != 1 {
		t.Fatalf("want 1 surviving row, got %d", len(rows))
	}
	if !rows[0].CheckedAt.Equal(fresh) {
		t.Fatalf("janitor purged the wrong row")
	}
}

func TestNewJanitor_Defaults(t *testing.T) {
	j := NewJanitor(zap.NewNop(), memory.New(), 0, 0)
	if j.Horizon != 30*24*time.Hour {
		t.Fatalf("want 30d default horizon, got %v", j.Horizon)
	}
	if j.Interval != time.Hour {
		t.Fatalf("want 1h default interval, got %v", j.Interval)
	}
}
