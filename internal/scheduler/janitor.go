package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/repo"
)

// Janitor periodically expires results older than the retention horizon.
// A failed purge is logged and retried on the next tick; it never affects
// probing or queries.
type Janitor struct {
	Logger   *zap.Logger
	Results  repo.ResultStore
	Horizon  time.Duration // results older than now-Horizon are purged
	Interval time.Duration
}

func NewJanitor(log *zap.Logger, results repo.ResultStore, horizon, interval time.Duration) *Janitor {
	if horizon <= 0 {
		horizon = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{Logger: log, Results: results, Horizon: horizon, Interval: interval}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	t := time.NewTicker(j.Interval)
	defer t.Stop()

	j.purgeOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			j.Logger.Info("janitor_stopped")
			return
		case <-t.C:
			j.purgeOnce(ctx)
		}
	}
}

func (j *Janitor) purgeOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.Horizon)
	n, err := j.Results.Purge(ctx, cutoff)
	if err != nil {
		j.Logger.Warn("janitor_purge_error", zap.Error(err))
		return
	}
	if n > 0 {
		j.Logger.Info("janitor_purged",
			zap.Int64("rows", n),
			zap.Time("cutoff", cutoff),
		)
	}
}
