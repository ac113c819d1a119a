package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client address for logging. The router runs chi's
// RealIP middleware, so RemoteAddr already reflects X-Forwarded-For or
// X-Real-IP when a proxy set them; the header lookup covers handlers
// invoked outside that stack.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return ""
}
