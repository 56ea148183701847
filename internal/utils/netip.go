package utils

import (
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders are consulted in order when the proxy is trusted.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ParseAddr accepts "ip", "ip:port" and "[v6]:port". IPv4-mapped IPv6
// addresses are unmapped so they match IPv4 prefixes.
func ParseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(s, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// ClientIP resolves the caller's address. Proxy headers are only read when
// trustProxy is set; X-Forwarded-For contributes its left-most hop.
// Returns "" when nothing parses.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			if first, _, found := strings.Cut(v, ","); found {
				v = first
			}
			if addr, ok := ParseAddr(v); ok {
				return addr.String()
			}
		}
	}
	if addr, ok := ParseAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return ""
}

// PrefixSet matches addresses against a list of CIDRs and single IPs.
type PrefixSet struct {
	prefixes []netip.Prefix
}

// NewPrefixSet parses list, ignoring blank and malformed entries.
// A single IP is kept as a full-length prefix.
func NewPrefixSet(list []string) *PrefixSet {
	s := &PrefixSet{}
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			s.prefixes = append(s.prefixes, p.Masked())
			continue
		}
		if addr, ok := ParseAddr(raw); ok {
			s.prefixes = append(s.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return s
}

func (s *PrefixSet) IsEmpty() bool {
	return len(s.prefixes) == 0
}

// Contains reports whether ip falls in any prefix.
func (s *PrefixSet) Contains(ip string) bool {
	addr, ok := ParseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range s.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
