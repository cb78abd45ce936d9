package domain

import "time"

// EndpointSpec describes one monitored endpoint. Specs are immutable after
// load; a reload replaces the whole registry, never individual fields.
type EndpointSpec struct {
	Name             string            `json:"name"`
	URL              string            `json:"url"`
	Method           string            `json:"method"`
	Interval         time.Duration     `json:"interval"`
	Timeout          time.Duration     `json:"timeout"`
	Headers          map[string]string `json:"headers,omitempty"`
	ExpectedStatuses []int             `json:"expected_statuses,omitempty"`
}

// StatusOK reports whether the given HTTP status counts as "up" for this
// spec. An empty ExpectedStatuses list means any 2xx or 3xx is up.
func (s EndpointSpec) StatusOK(code int) bool {
	if len(s.ExpectedStatuses) == 0 {
		return code >= 200 && code < 400
	}
	for _, want := range s.ExpectedStatuses {
		if code == want {
			return true
		}
	}
	return false
}

// ProbeResult is the outcome of a single probe. Immutable once created;
// the store only ever appends them.
type ProbeResult struct {
	EndpointName string    `json:"endpoint_name"`
	CheckedAt    time.Time `json:"checked_at"` // probe start, not completion
	OK           bool      `json:"ok"`
	StatusCode   *int      `json:"status_code"` // nil on transport failure
	LatencyMS    *int64    `json:"latency_ms"`  // nil when not measurable
	Error        string    `json:"error,omitempty"`
}

// UptimeSummary is derived from stored results on demand, never persisted.
// Pct and AvgLatencyMS are nil when there is no data in the window so that
// "no data" stays distinguishable from 0% uptime.
type UptimeSummary struct {
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	TotalChecks  int       `json:"total_checks"`
	OKChecks     int       `json:"ok_checks"`
	Pct          *float64  `json:"pct"`
	AvgLatencyMS *float64  `json:"avg_latency_ms"`
}

// EndpointStatus is one row of a status snapshot.
type EndpointStatus struct {
	Name      string        `json:"name"`
	Last      *ProbeResult  `json:"last"`
	Uptime24h UptimeSummary `json:"uptime_24h"`
	UptimeAll UptimeSummary `json:"uptime_all"`
}

// StatusSnapshot is the pull-based view handed to the API layer, one entry
// per registered endpoint in registry order.
type StatusSnapshot struct {
	Now       time.Time        `json:"now"`
	Endpoints []EndpointStatus `json:"endpoints"`
}
