package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParseAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "10.0.0.1", want: "10.0.0.1", ok: true},
		{in: "10.0.0.1:5000", want: "10.0.0.1", ok: true},
		{in: "[::1]:5000", want: "::1", ok: true},
		{in: "[2001:db8::1]", want: "2001:db8::1", ok: true},
		{in: "::ffff:192.168.1.7", want: "192.168.1.7", ok: true},
		{in: " ", ok: false},
		{in: "localhost:80", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			addr, ok := ParseAddr(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseAddr(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && addr.String() != tt.want {
				t.Errorf("ParseAddr(%q) = %s, want %s", tt.in, addr, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr only", remoteAddr: "10.0.0.1:5000", want: "10.0.0.1"},
		{name: "xff ignored without trust", remoteAddr: "10.0.0.1:5000", headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, want: "10.0.0.1"},
		{name: "xff first hop with trust", remoteAddr: "10.0.0.1:5000", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, trustProxy: true, want: "1.2.3.4"},
		{name: "cloudflare header wins", remoteAddr: "10.0.0.1:5000", headers: map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Forwarded-For": "1.2.3.4"}, trustProxy: true, want: "9.9.9.9"},
		{name: "garbage header falls through", remoteAddr: "10.0.0.1:5000", headers: map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "8.8.4.4"}, trustProxy: true, want: "8.8.4.4"},
		{name: "ipv6 remote addr", remoteAddr: "[::1]:5000", want: "::1"},
		{name: "unparsable remote addr", remoteAddr: "pipe", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrefixSet(t *testing.T) {
	s := NewPrefixSet([]string{"10.0.0.0/8", " 192.168.1.7 ", "fd00::/8", "garbage", ""})

	tests := []struct {
		ip   string
		want bool
	}{
		{ip: "10.20.30.40", want: true},
		{ip: "192.168.1.7", want: true},
		{ip: "192.168.1.8", want: false},
		{ip: "fd12::1", want: true},
		{ip: "::ffff:10.1.1.1", want: true},
		{ip: "not-an-ip", want: false},
	}

	for _, tt := range tests {
		if got := s.Contains(tt.ip); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewPrefixSet(nil).IsEmpty() {
		t.Error("empty list should give an empty set")
	}
}
