package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

// Store keeps probe results in process memory, keyed by endpoint name.
// Used when no DATABASE_URL is configured and as the test substitute.
type Store struct {
	mu      sync.RWMutex
	results map[string][]domain.ProbeResult // append order == probe order
}

func New() *Store {
	return &Store{
		results: make(map[string][]domain.ProbeResult),
	}
}

func (m *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.EndpointName] = append(m.results[r.EndpointName], *r)
	return nil
}

func (m *Store) History(ctx context.Context, name string, limit int) ([]domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs := m.results[name]
	if limit > len(rs) {
		limit = len(rs)
	}
	out := make([]domain.ProbeResult, 0, limit)
	for i := len(rs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rs[i])
	}
	return out, nil
}

func (m *Store) ResultsSince(ctx context.Context, name string, since time.Time) ([]domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ProbeResult
	for _, r := range m.results[name] {
		if since.IsZero() || !r.CheckedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Store) Last(ctx context.Context, name string) (*domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs := m.results[name]
	if len(rs) == 0 {
		return nil, nil
	}
	r := rs[len(rs)-1]
	return &r, nil
}

func (m *Store) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for name, rs := range m.results {
		// results are appended in time order, so find the first survivor
		i := 0
		for i < len(rs) && rs[i].CheckedAt.Before(olderThan) {
			i++
		}
		if i > 0 {
			m.results[name] = append([]domain.ProbeResult(nil), rs[i:]...)
			purged += int64(i)
		}
	}
	return purged, nil
}
