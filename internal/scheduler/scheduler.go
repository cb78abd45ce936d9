package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/probe"
	"github.com/hamed0406/statuswatch/internal/repo"
)

// Scheduler owns one runner goroutine per registered endpoint. Each runner
// probes immediately on registration, then on its own interval ticker.
// The runner loop is the single-flight guarantee: probes for one endpoint
// are serialized by construction, and ticks landing during a probe are
// drained, never queued.
//
// Removal policy: an in-flight probe at removal or shutdown still gets its
// result appended (the store write uses its own context), then the runner
// exits.
type Scheduler struct {
	log          *zap.Logger
	exec         probe.Executor
	results      repo.ResultStore
	grace        time.Duration
	appendWindow time.Duration

	mu      sync.Mutex
	runners map[string]*runner
	wg      sync.WaitGroup
	stopped bool
}

type runner struct {
	spec   domain.EndpointSpec
	cancel context.CancelFunc
	kick   chan struct{} // capacity 1: an on-demand probe request
	done   chan struct{}
}

func New(log *zap.Logger, exec probe.Executor, results repo.ResultStore, grace time.Duration) *Scheduler {
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Scheduler{
		log:          log,
		exec:         exec,
		results:      results,
		grace:        grace,
		appendWindow: 5 * time.Second,
		runners:      make(map[string]*runner),
	}
}

// Register starts a runner for the spec. Re-registering a name replaces
// the previous runner; history under that name is untouched.
func (s *Scheduler) Register(spec domain.EndpointSpec) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if old, ok := s.runners[spec.Name]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &runner{
		spec:   spec,
		cancel: cancel,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.runners[spec.Name] = r
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(ctx, r)
}

// Remove cancels the endpoint's timer. Reports whether the name was known.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	r, ok := s.runners[name]
	if ok {
		delete(s.runners, name)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	r.cancel()
	return true
}

// Kick requests one immediate probe outside the cadence. If a probe for
// the endpoint is already running or queued, the request coalesces into it.
func (s *Scheduler) Kick(name string) bool {
	s.mu.Lock()
	r, ok := s.runners[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case r.kick <- struct{}{}:
	default:
	}
	return true
}

// Stop cancels every runner and waits for in-flight probes, up to the
// grace period. It never blocks indefinitely on a hung network call.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, r := range s.runners {
		r.cancel()
	}
	s.runners = make(map[string]*runner)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.grace):
		s.log.Warn("scheduler_stop_grace_exceeded", zap.Duration("grace", s.grace))
	}
}

func (s *Scheduler) loop(ctx context.Context, r *runner) {
	defer s.wg.Done()
	defer close(r.done)

	t := time.NewTicker(r.spec.Interval)
	defer t.Stop()

	// immediate first probe at registration
	s.probeOnce(ctx, r.spec)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probeOnce(ctx, r.spec)
		case <-r.kick:
			s.probeOnce(ctx, r.spec)
		}
		// drop any tick that fired while the probe ran
		select {
		case <-t.C:
		default:
		}
	}
}

func (s *Scheduler) probeOnce(ctx context.Context, spec domain.EndpointSpec) {
	if ctx.Err() != nil {
		return
	}
	res := s.exec.Execute(ctx, spec)

	if !res.OK && res.StatusCode == nil && res.Error != "" && res.Error != "canceled" {
		s.log.Debug("probe_transport_failure",
			zap.String("endpoint", spec.Name),
			zap.String("error", res.Error),
			zap.String("dns_class", probe.ClassifyDNS(spec.URL)),
		)
	}

	// The append is decoupled from the runner context so a result from a
	// probe in flight at removal/shutdown is still recorded.
	sctx, cancel := context.WithTimeout(context.Background(), s.appendWindow)
	defer cancel()
	if err := s.results.Append(sctx, &res); err != nil {
		// store errors never stop the cadence; the next probe retries
		s.log.Warn("probe_append_error",
			zap.String("endpoint", spec.Name),
			zap.Error(err),
		)
		return
	}

	s.log.Debug("probe_recorded",
		zap.String("endpoint", spec.Name),
		zap.Bool("ok", res.OK),
		zap.String("error", res.Error),
	)
}
