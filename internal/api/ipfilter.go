package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
)

// originFilter rejects requests whose client address falls outside the
// configured CIDR allowlist. An empty allowlist disables filtering. The
// ranges are hot-swappable so a config reload can pick up GitHub's current
// published hook ranges without a restart.
type originFilter struct {
	mu                sync.RWMutex
	nets              []*net.IPNet
	trustForwardedFor bool
}

func newOriginFilter(cidrs []string, trustForwardedFor bool) *originFilter {
	f := &originFilter{trustForwardedFor: trustForwardedFor}
	f.SetRanges(cidrs)
	return f
}

// SetRanges replaces the allowlist. Unparseable entries are skipped; the
// config validator has already reported them.
func (f *originFilter) SetRanges(cidrs []string) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	f.mu.Lock()
	f.nets = nets
	f.mu.Unlock()
}

// Allow reports whether the request origin is acceptable. Undeterminable
// addresses are rejected when filtering is enabled.
func (f *originFilter) Allow(r *http.Request) bool {
	f.mu.RLock()
	nets := f.nets
	f.mu.RUnlock()
	if len(nets) == 0 {
		return true
	}

	ip := f.clientIP(r)
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (f *originFilter) clientIP(r *http.Request) net.IP {
	if f.trustForwardedFor {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
