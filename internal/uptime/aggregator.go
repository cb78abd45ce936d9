// Package uptime derives availability and latency summaries from stored
// probe results. Pure reads, no caching, no mutation.
package uptime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/repo"
)

// AllTime selects every retained result instead of a rolling window.
const AllTime time.Duration = 0

type Aggregator struct {
	Results repo.ResultStore
}

func NewAggregator(results repo.ResultStore) *Aggregator {
	return &Aggregator{Results: results}
}

// Summarize computes the uptime summary for one endpoint over the given
// rolling window ending now. Pass AllTime for the full retained history.
// With zero recorded checks, Pct and AvgLatencyMS stay nil: "no data" is
// not 0% uptime.
func (a *Aggregator) Summarize(ctx context.Context, name string, window time.Duration) (domain.UptimeSummary, error) {
	now := time.Now().UTC()
	var since time.Time
	if window > 0 {
		since = now.Add(-window)
	}

	rows, err := a.Results.ResultsSince(ctx, name, since)
	if err != nil {
		return domain.UptimeSummary{}, fmt.Errorf("summarize %s: %w", name, err)
	}

	sum := domain.UptimeSummary{
		WindowStart: since,
		WindowEnd:   now,
	}
	if window <= 0 && len(rows) > 0 {
		sum.WindowStart = rows[0].CheckedAt
	}

	var latTotal int64
	var latCount int
	for _, r := range rows {
		sum.TotalChecks++
		if r.OK {
			sum.OKChecks++
			if r.LatencyMS != nil {
				latTotal += *r.LatencyMS
				latCount++
			}
		}
	}

	if sum.TotalChecks > 0 {
		pct := math.Round(float64(sum.OKChecks)/float64(sum.TotalChecks)*100*100) / 100
		sum.Pct = &pct
	}
	if latCount > 0 {
		avg := float64(latTotal) / float64(latCount)
		sum.AvgLatencyMS = &avg
	}
	return sum, nil
}
