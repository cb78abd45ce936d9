package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/statuswatch/internal/domain"
)

// endpointFile mirrors the on-disk shape: intervals and timeouts are plain
// seconds, as in the original JSON config format.
type endpointFile struct {
	Name             string            `json:"name" yaml:"name"`
	URL              string            `json:"url" yaml:"url"`
	Method           string            `json:"method" yaml:"method"`
	IntervalSeconds  int               `json:"interval_seconds" yaml:"interval_seconds"`
	TimeoutSeconds   int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	Headers          map[string]string `json:"headers" yaml:"headers"`
	ExpectedStatuses []int             `json:"expected_statuses" yaml:"expected_statuses"`
}

// LoadEndpointSpecs reads the endpoint list from a JSON or YAML file and
// applies defaults (GET, 30s interval, 10s timeout). It does not validate
// beyond decoding; per-spec validation happens at registration so a bad
// spec only rejects itself.
func LoadEndpointSpecs(path string) ([]domain.EndpointSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	var entries []endpointFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse yaml endpoints: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse json endpoints: %w", err)
		}
	}

	specs := make([]domain.EndpointSpec, 0, len(entries))
	for _, e := range entries {
		if e.Method == "" {
			e.Method = "GET"
		}
		if e.IntervalSeconds == 0 {
			e.IntervalSeconds = 30
		}
		if e.TimeoutSeconds == 0 {
			e.TimeoutSeconds = 10
		}
		specs = append(specs, domain.EndpointSpec{
			Name:             strings.TrimSpace(e.Name),
			URL:              strings.TrimSpace(e.URL),
			Method:           strings.ToUpper(strings.TrimSpace(e.Method)),
			Interval:         time.Duration(e.IntervalSeconds) * time.Second,
			Timeout:          time.Duration(e.TimeoutSeconds) * time.Second,
			Headers:          e.Headers,
			ExpectedStatuses: e.ExpectedStatuses,
		})
	}
	return specs, nil
}
