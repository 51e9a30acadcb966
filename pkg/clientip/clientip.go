package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// DefaultHeaders are consulted by GetIP, highest priority first.
var DefaultHeaders = []string{
	"CF-Connecting-IP", // Cloudflare
	"DO-Connecting-IP", // DigitalOcean App Platform
	"X-Forwarded-For",  // Standard proxy header, first valid address wins
	"X-Real-IP",        // Nginx
}

// Config selects the proxy headers relayd trusts.
type Config struct {
	TrustedHeaders []string `env:"CLIENTIP_TRUSTED_HEADERS" envDefault:"X-Forwarded-For,X-Real-IP"` // TrustedHeaders are checked in order, empty means RemoteAddr only.
}

// Resolver extracts the client address from a request. Only the configured
// headers are trusted; anything else is ignored so clients talking to the
// service directly cannot spoof their address.
type Resolver struct {
	headers []string
}

// NewResolver trusts headers in the given order.
func NewResolver(headers ...string) *Resolver {
	trusted := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			trusted = append(trusted, http.CanonicalHeaderKey(h))
		}
	}
	return &Resolver{headers: trusted}
}

// NewFromConfig creates a resolver trusting cfg.TrustedHeaders.
func NewFromConfig(cfg Config) *Resolver {
	return NewResolver(cfg.TrustedHeaders...)
}

var defaultResolver = NewResolver(DefaultHeaders...)

// GetIP returns the client's IP address using DefaultHeaders.
func GetIP(r *http.Request) string {
	return defaultResolver.IP(r)
}

// IP returns the normalized client address, or an empty string when no
// valid address is found.
func (res *Resolver) IP(r *http.Request) string {
	for _, h := range res.headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For can contain multiple IPs, find the first valid one
		for ip := range strings.SplitSeq(v, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string. IPv4-mapped IPv6
// addresses are unmapped and zones are dropped.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	return addr.Unmap().WithZone("").String()
}
