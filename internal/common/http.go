package common

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers consulted for the originating client address, in trust
// order. X-Forwarded-For carries a hop chain; the client sits first.
var forwardedHeaders = [...]string{"X-Forwarded-For", "X-Real-IP"}

// ClientIP returns the originating client address of a request as seen
// through the edge proxies, falling back to the socket peer.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, header := range forwardedHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	peer := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(peer); err == nil {
		return host
	}
	return peer
}
