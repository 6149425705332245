package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPResolver determines the client address of a request. Forwarding headers
// are honored only when the direct peer is inside a trusted proxy range.
type IPResolver struct {
	trusted []netip.Prefix
}

// NewIPResolver parses the trusted proxy CIDR ranges; invalid entries are skipped
func NewIPResolver(trustedProxies []string) *IPResolver {
	prefixes := make([]netip.Prefix, 0, len(trustedProxies))
	for _, cidr := range trustedProxies {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
		if err != nil {
			continue
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return &IPResolver{trusted: prefixes}
}

// ClientIP returns the client IP for r
func (res *IPResolver) ClientIP(r *http.Request) string {
	remote := remoteIP(r)

	if res == nil || !res.isTrusted(remote) {
		return remote
	}

	// X-Forwarded-For may hold a chain, the first valid entry is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, candidate := range strings.Split(xff, ",") {
			candidate = strings.TrimSpace(candidate)
			if _, err := netip.ParseAddr(candidate); err == nil {
				return candidate
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}

	return remote
}

func (res *IPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range res.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteIP strips the port from RemoteAddr
func remoteIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
