package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

var dnsTimeout = 3 * time.Second

// ClassifyDNS resolves the host of a target URL and classifies the outcome.
// Used as a diagnostic after transport-level probe failures; never affects
// the probe result itself.
// Classes: "RESOLVES" | "NXDOMAIN" | "SERVFAIL_or_TIMEOUT" | "INVALID_NAME"
func ClassifyDNS(target string) string {
	host := extractHost(target)
	if host == "" {
		return "INVALID_NAME"
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()
	r := &net.Resolver{} // OS resolver

	ips, err := r.LookupIP(ctx, "ip", host)
	if err == nil && len(ips) > 0 {
		return "RESOLVES"
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return "NXDOMAIN"
		}
		if de.IsTemporary || de.Timeout() {
			return "SERVFAIL_or_TIMEOUT"
		}
	}
	return "NXDOMAIN"
}

// extractHost pulls the hostname from a URL string.
func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		if strings.Contains(raw, "://") {
			return ""
		}
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}
