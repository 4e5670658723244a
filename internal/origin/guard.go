// Package origin implements the DNS-rebinding guard and CORS header
// exposure (C10), grounded on
// viant-jsonrpc/transport/server/http/common/origin.go's ClientHost/
// TopDomain helpers (reused here to let an allow-listed bare domain match
// its subdomains via eTLD+1 comparison) and headers.go's forwarded-header
// reconstruction.
package origin

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Guard enforces the configured origin allow-list.
type Guard struct {
	allowed []string
}

// NewGuard constructs a Guard over the given allow-list entries, which may
// be bare hosts ("localhost"), host:port pairs, or full origins
// ("https://app.example.com").
func NewGuard(allowed []string) *Guard {
	return &Guard{allowed: allowed}
}

// Allowed reports whether the given Origin header value is admitted.
// An empty origin (direct, non-browser callers) is always allowed.
func (g *Guard) Allowed(originHeader string) bool {
	if originHeader == "" {
		return true
	}
	host := hostOf(originHeader)
	if host == "" {
		return false
	}
	for _, entry := range g.allowed {
		entryHost := hostOf(entry)
		if entryHost == "" {
			entryHost = entry
		}
		if strings.EqualFold(entryHost, host) {
			return true
		}
		if sameTopDomain(entryHost, host) {
			return true
		}
	}
	return false
}

func hostOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return stripPort(u.Host)
	}
	return stripPort(raw)
}

func sameTopDomain(a, b string) bool {
	ta, erra := topDomain(a)
	tb, errb := topDomain(b)
	if erra != nil || errb != nil || ta == "" || tb == "" {
		return false
	}
	return ta == tb
}

func topDomain(host string) (string, error) {
	if host == "" || isIP(host) || isLocalhost(host) {
		return "", nil
	}
	e, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", err
	}
	if e == "" {
		return "", nil
	}
	return e, nil
}

func isIP(h string) bool { return net.ParseIP(stripPort(h)) != nil }

func isLocalhost(h string) bool {
	h = strings.ToLower(stripPort(h))
	return h == "localhost" || strings.HasSuffix(h, ".localhost") || h == "127.0.0.1"
}

func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i > -1 {
		return h[:i]
	}
	return h
}

// Forwarded holds the proxy-reconstructed scheme and host of a request.
type Forwarded struct {
	Proto string
	Host  string
}

// ExtractForwarded reconstructs the client-visible scheme/host from
// X-Forwarded-Proto / X-Forwarded-Host when present, falling back to the
// request's own values.
func ExtractForwarded(r *http.Request) Forwarded {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return Forwarded{Proto: proto, Host: host}
}

// SetCORSHeaders applies the gateway's fixed CORS response headers.
func SetCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Mcp-Session-Id")
	w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id")
}
