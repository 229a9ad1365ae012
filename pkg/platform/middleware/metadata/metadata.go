// Package metadata resolves the client address for request logging.
// The address is only ever logged through privacy.AnonymizeIP and never stored.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"confessional/pkg/requestcontext"
)

// MaxXFFHeaderLength bounds X-Forwarded-For parsing.
const MaxXFFHeaderLength = 500

// Middleware extracts the client IP, trusting forwarding headers only from listed proxies.
type Middleware struct {
	trusted []netip.Prefix
}

// NewMiddleware parses trusted proxy CIDRs. Invalid entries are skipped.
func NewMiddleware(trustedProxies []string) *Middleware {
	m := &Middleware{}
	for _, cidr := range trustedProxies {
		if p, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err == nil {
			m.trusted = append(m.trusted, p)
		}
	}
	return m
}

// Handler stores the resolved client IP on the request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), m.clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) clientIP(r *http.Request) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}
	if remote == "" {
		return "unknown"
	}
	if !m.isTrusted(remote) {
		return remote
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		forwarded = r.Header.Get("X-Real-IP")
	}
	if forwarded == "" || len(forwarded) > MaxXFFHeaderLength {
		return remote
	}
	first, _, _ := strings.Cut(forwarded, ",")
	first = strings.TrimSpace(first)
	if _, err := netip.ParseAddr(first); err != nil {
		return remote
	}
	return first
}

func (m *Middleware) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range m.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
