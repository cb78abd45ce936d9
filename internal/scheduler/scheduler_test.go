package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
)

// --- fakes ---

type fakeResults struct {
	mu   sync.Mutex
	rows []domain.ProbeResult
	fail atomic.Bool
}

func (f *fakeResults) Append(ctx context.Context, r *domain.ProbeResult) error {
	if f.fail.Load() {
		return errors.New("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeResults) History(ctx context.Context, name string, limit int) ([]domain.ProbeResult, error) {
	return nil, nil
}

func (f *fakeResults) ResultsSince(ctx context.Context, name string, since time.Time) ([]domain.ProbeResult, error) {
	return nil, nil
}

func (f *fakeResults) Last(ctx context.Context, name string) (*domain.ProbeResult, error) {
	return nil, nil
}

func (f *fakeResults) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeResults) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.EndpointName == name {
			n++
		}
	}
	return n
}

// countingExec tracks how many probes run concurrently per endpoint.
type countingExec struct {
	delay    time.Duration
	mu       sync.Mutex
	inflight map[string]int
	maxSeen  map[string]int
}

func newCountingExec(delay time.Duration) *countingExec {
	return &countingExec{
		delay:    delay,
		inflight: make(map[string]int),
		maxSeen:  make(map[string]int),
	}
}

func (c *countingExec) Execute(ctx context.Context, spec domain.EndpointSpec) domain.ProbeResult {
	c.mu.Lock()
	c.inflight[spec.Name]++
	if c.inflight[spec.Name] > c.maxSeen[spec.Name] {
		c.maxSeen[spec.Name] = c.inflight[spec.Name]
	}
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
		}
	}

	c.mu.Lock()
	c.inflight[spec.Name]--
	c.mu.Unlock()

	code := 200
	return domain.ProbeResult{
		EndpointName: spec.Name,
		CheckedAt:    time.Now().UTC(),
		OK:           true,
		StatusCode:   &code,
	}
}

func (c *countingExec) max(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSeen[name]
}

// hangingExec ignores cancellation, simulating a stuck network call.
type hangingExec struct{}

func (hangingExec) Execute(ctx context.Context, spec domain.EndpointSpec) domain.ProbeResult {
	time.Sleep(3 * time.Second)
	return domain.ProbeResult{EndpointName: spec.Name, CheckedAt: time.Now().UTC()}
}

func testSpec(name string, interval time.Duration) domain.EndpointSpec {
	return domain.EndpointSpec{
		Name:     name,
		URL:      "https://example.com",
		Interval: interval,
		Timeout:  time.Second,
	}
}

// --- tests ---

func TestScheduler_ImmediateFirstProbeAndCadence(t *testing.T) {
	store := &fakeResults{}
	s := New(zap.NewNop(), newCountingExec(0), store, time.Second)
	defer s.Stop()

	s.Register(testSpec("a", 20*time.Millisecond))

	deadline := time.Now().Add(2 * time.Second)
	for store.count("a") < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := store.count("a"); n < 3 {
		t.Fatalf("want >= 3 recorded probes, got %d", n)
	}
}

func TestScheduler_SingleFlightPerEndpoint(t *testing.T) {
	store := &fakeResults{}
	exec := newCountingExec(60 * time.Millisecond) // slower than the interval
	s := New(zap.NewNop(), exec, store, time.Second)
	defer s.Stop()

	s.Register(testSpec("slow", 10*time.Millisecond))
	s.Register(testSpec("other", 10*time.Millisecond))

	time.Sleep(300 * time.Millisecond)

	if m := exec.max("slow"); m > 1 {
		t.Fatalf("single-flight violated: %d concurrent probes for one endpoint", m)
	}
	if m := exec.max("other"); m > 1 {
		t.Fatalf("single-flight violated for second endpoint: %d", m)
	}
	// a slow endpoint must not stall the other one
	if n := store.count("other"); n < 3 {
		t.Fatalf("fast endpoint starved: only %d probes recorded", n)
	}
}

func TestScheduler_RemoveStopsCadence(t *testing.T) {
	store := &fakeResults{}
	s := New(zap.NewNop(), newCountingExec(0), store, time.Second)
	defer s.Stop()

	s.Register(testSpec("a", 15*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	if !s.Remove("a") {
		t.Fatalf("Remove returned false for known endpoint")
	}
	if s.Remove("a") {
		t.Fatalf("Remove returned true for already-removed endpoint")
	}

	time.Sleep(30 * time.Millisecond) // let an in-flight probe settle
	before := store.count("a")
	time.Sleep(80 * time.Millisecond)
	if after := store.count("a"); after != before {
		t.Fatalf("probes continued after removal: %d -> %d", before, after)
	}
}

func TestScheduler_KickProbesNowAndUnknownName(t *testing.T) {
	store := &fakeResults{}
	s := New(zap.NewNop(), newCountingExec(0), store, time.Second)
	defer s.Stop()

	s.Register(testSpec("a", time.Hour)) // cadence effectively off
	deadline := time.Now().Add(time.Second)
	for store.count("a") < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if !s.Kick("a") {
		t.Fatalf("Kick returned false for known endpoint")
	}
	deadline = time.Now().Add(time.Second)
	for store.count("a") < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := store.count("a"); n < 2 {
		t.Fatalf("kick did not trigger a probe, count=%d", n)
	}

	if s.Kick("ghost") {
		t.Fatalf("Kick returned true for unknown endpoint")
	}
}

func TestScheduler_StoreErrorKeepsScheduling(t *testing.T) {
	store := &fakeResults{}
	store.fail.Store(true)
	s := New(zap.NewNop(), newCountingExec(0), store, time.Second)
	defer s.Stop()

	s.Register(testSpec("a", 15*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	// store recovers; cadence must still be alive
	store.fail.Store(false)
	deadline := time.Now().Add(2 * time.Second)
	for store.count("a") < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.count("a") == 0 {
		t.Fatalf("scheduler stopped after store errors")
	}
}

func TestScheduler_StopBoundedByGrace(t *testing.T) {
	store := &fakeResults{}
	s := New(zap.NewNop(), hangingExec{}, store, 100*time.Millisecond)

	s.Register(testSpec("stuck", time.Hour))
	time.Sleep(20 * time.Millisecond) // let the hung probe start

	start := time.Now()
	s.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Stop blocked past grace period: %v", elapsed)
	}
}

func TestScheduler_ReRegisterReplacesRunner(t *testing.T) {
	store := &fakeResults{}
	exec := newCountingExec(0)
	s := New(zap.NewNop(), exec, store, time.Second)
	defer s.Stop()

	s.Register(testSpec("a", time.Hour))
	s.Register(testSpec("a", 15*time.Millisecond))

	deadline := time.Now().Add(2 * time.Second)
	for store.count("a") < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := store.count("a"); n < 4 {
		t.Fatalf("replacement runner not active, count=%d", n)
	}
}
