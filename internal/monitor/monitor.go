// Package monitor wires the registry, scheduler, store and aggregator into
// the operations the HTTP layer calls.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/probe"
	"github.com/hamed0406/statuswatch/internal/repo"
	"github.com/hamed0406/statuswatch/internal/scheduler"
	"github.com/hamed0406/statuswatch/internal/uptime"
)

const defaultHistoryLimit = 200

type Monitor struct {
	log     *zap.Logger
	results repo.ResultStore
	sched   *scheduler.Scheduler
	agg     *uptime.Aggregator

	mu    sync.RWMutex
	order []string // registry order for GetStatus
	specs map[string]domain.EndpointSpec
}

func New(log *zap.Logger, results repo.ResultStore, exec probe.Executor, grace time.Duration) *Monitor {
	return &Monitor{
		log:     log,
		results: results,
		sched:   scheduler.New(log, exec, results, grace),
		agg:     uptime.NewAggregator(results),
		specs:   make(map[string]domain.EndpointSpec),
	}
}

// LoadEndpoints replaces the registry with the given specs. Each invalid
// spec is rejected on its own; valid ones still load. Duplicate names
// within the batch reject the later spec. The combined validation error is
// returned after the valid specs are scheduled.
//
// Endpoints present before the call but absent from specs are removed;
// their history stays in the store under their name.
func (m *Monitor) LoadEndpoints(specs []domain.EndpointSpec) error {
	var errs error
	seen := make(map[string]bool, len(specs))
	accepted := make([]domain.EndpointSpec, 0, len(specs))

	for _, s := range specs {
		if err := s.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if seen[s.Name] {
			errs = multierr.Append(errs, &domain.ValidationError{
				Name: s.Name, Field: "name", Msg: "is duplicated",
			})
			continue
		}
		seen[s.Name] = true
		accepted = append(accepted, s)
	}

	m.mu.Lock()
	old := m.specs
	m.specs = make(map[string]domain.EndpointSpec, len(accepted))
	m.order = m.order[:0]
	for _, s := range accepted {
		m.specs[s.Name] = s
		m.order = append(m.order, s.Name)
	}
	m.mu.Unlock()

	for name := range old {
		if !seen[name] {
			m.sched.Remove(name)
		}
	}
	for _, s := range accepted {
		m.sched.Register(s)
	}

	m.log.Info("endpoints_loaded",
		zap.Int("accepted", len(accepted)),
		zap.Int("rejected", len(specs)-len(accepted)),
	)
	return errs
}

// GetStatus returns one entry per registered endpoint, in registry order.
func (m *Monitor) GetStatus(ctx context.Context) (domain.StatusSnapshot, error) {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	snap := domain.StatusSnapshot{
		Now:       time.Now().UTC(),
		Endpoints: make([]domain.EndpointStatus, 0, len(names)),
	}
	for _, name := range names {
		last, err := m.results.Last(ctx, name)
		if err != nil {
			return domain.StatusSnapshot{}, err
		}
		day, err := m.agg.Summarize(ctx, name, 24*time.Hour)
		if err != nil {
			return domain.StatusSnapshot{}, err
		}
		all, err := m.agg.Summarize(ctx, name, uptime.AllTime)
		if err != nil {
			return domain.StatusSnapshot{}, err
		}
		snap.Endpoints = append(snap.Endpoints, domain.EndpointStatus{
			Name:      name,
			Last:      last,
			Uptime24h: day,
			UptimeAll: all,
		})
	}
	return snap, nil
}

// GetHistory returns up to limit results, most recent first. A limit <= 0
// falls back to the default of 200.
func (m *Monitor) GetHistory(ctx context.Context, name string, limit int) ([]domain.ProbeResult, error) {
	if !m.known(name) {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return m.results.History(ctx, name, limit)
}

// CheckNow queues one immediate probe for the endpoint, subject to the
// same single-flight guarantee as scheduled probes.
func (m *Monitor) CheckNow(name string) error {
	if !m.sched.Kick(name) {
		return domain.ErrNotFound
	}
	return nil
}

// Stop shuts the scheduler down, bounded by its grace period.
func (m *Monitor) Stop() {
	m.sched.Stop()
}

func (m *Monitor) known(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.specs[name]
	return ok
}
