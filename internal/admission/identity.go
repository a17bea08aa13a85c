package admission

import (
	"net"
	"net/http"
	"strings"
)

// Identity derives a client identity from request headers. Precedence: first
// comma-separated value of X-Forwarded-For, then X-Real-IP, then the
// transport-level peer address. The header values are not validated, so the
// identity is spoofable when the service runs behind an untrusted proxy; it
// may also be shared by clients behind the same NAT or egress proxy.
func Identity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
