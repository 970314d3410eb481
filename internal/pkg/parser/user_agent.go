package parser

import (
	"net"
	"net/http"
	"strings"
)

type uaRule struct {
	needle  string
	exclude string
	name    string
}

// Order matters: Edge and Chrome both advertise Safari.
var osRules = []uaRule{
	{needle: "windows", name: "Windows"},
	{needle: "android", name: "Android"},
	{needle: "iphone", name: "iOS"},
	{needle: "ipad", name: "iOS"},
	{needle: "mac os", name: "macOS"},
	{needle: "linux", name: "Linux"},
}

var browserRules = []uaRule{
	{needle: "edg", name: "Edge"},
	{needle: "firefox", name: "Firefox"},
	{needle: "chrome", name: "Chrome"},
	{needle: "safari", exclude: "chrome", name: "Safari"},
}

// ParseUserAgent returns coarse OS and browser names for audit records.
func ParseUserAgent(ua string) (os, browser string) {
	lower := strings.ToLower(ua)
	return match(lower, osRules), match(lower, browserRules)
}

func match(ua string, rules []uaRule) string {
	for _, r := range rules {
		if !strings.Contains(ua, r.needle) {
			continue
		}
		if r.exclude != "" && strings.Contains(ua, r.exclude) {
			continue
		}
		return r.name
	}
	return "Unknown"
}

// ClientIP prefers the first X-Forwarded-For hop, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
