package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hamed0406/statuswatch/internal/domain"
)

// Executor performs a single probe against a spec. It never returns an
// error; every failure mode is captured inside the ProbeResult.
type Executor interface {
	Execute(ctx context.Context, spec domain.EndpointSpec) domain.ProbeResult
}

// HTTPExecutor probes endpoints over HTTP. The client carries no global
// timeout; each probe is bounded by its spec's Timeout via context.
type HTTPExecutor struct {
	Client *http.Client
}

func NewHTTPExecutor() *HTTPExecutor {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &HTTPExecutor{
		Client: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, spec domain.EndpointSpec) domain.ProbeResult {
	checkedAt := time.Now().UTC()
	res := domain.ProbeResult{
		EndpointName: spec.Name,
		CheckedAt:    checkedAt,
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	cctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(cctx, method, spec.URL, nil)
	if err != nil {
		res.Error = "invalid request: " + err.Error()
		return res
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.Client.Do(req)
	lat := time.Since(start).Milliseconds()
	res.LatencyMS = &lat
	if err != nil {
		res.Error = classify(err)
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	code := resp.StatusCode
	res.StatusCode = &code
	res.OK = spec.StatusOK(code)
	return res
}

// classify maps a transport error to a short, stable failure cause.
func classify(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns failure"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "connection error"
}
