package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const corsAllowedHeaders = "Content-Type, X-Request-ID"

// CORSPolicy is the set of browser origins allowed to embed the guest chat.
// "*" allows every origin.
type CORSPolicy struct {
	allowAny bool
	origins  map[string]struct{}
}

// NewCORSPolicy builds a policy from configured origins. Entries are trimmed
// and a trailing slash is dropped, so "https://guest.example/" matches the
// Origin header a browser sends.
func NewCORSPolicy(allowedOrigins []string) *CORSPolicy {
	p := &CORSPolicy{origins: map[string]struct{}{}}
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
		case "*":
			p.allowAny = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// AllowsOrigin reports whether origin may call the chat endpoints.
func (p *CORSPolicy) AllowsOrigin(origin string) bool {
	if p == nil || origin == "" {
		return false
	}
	if p.allowAny {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// Handler returns middleware granting allowed origins the given methods.
// A preflight for any other method is refused with 403 and never reaches
// next.
func (p *CORSPolicy) Handler(methods ...string) func(http.Handler) http.Handler {
	allowedMethods := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		allowedMethods[strings.ToUpper(m)] = struct{}{}
	}
	methodsHeader := strings.Join(append(append([]string(nil), methods...), http.MethodOptions), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowed := p.AllowsOrigin(origin)
			preflight := r.Method == http.MethodOptions && origin != "" && r.Header.Get("Access-Control-Request-Method") != ""

			if preflight {
				requested := strings.ToUpper(strings.TrimSpace(r.Header.Get("Access-Control-Request-Method")))
				if _, ok := allowedMethods[requested]; !ok || !allowed {
					w.Header().Add("Vary", "Origin")
					w.WriteHeader(http.StatusForbidden)
					return
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				w.Header().Set("Access-Control-Allow-Methods", methodsHeader)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOrigin rejects browser requests from origins outside the policy
// with 403. It guards the WebSocket endpoint, which CORS does not cover.
// Requests without an Origin header and same-host pages pass through.
func (p *CORSPolicy) RequireOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" && !p.AllowsOrigin(origin) && !sameHost(origin, r.Host) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host != "" && strings.EqualFold(u.Host, host)
}
