package middleware

import (
	"net/http"
	"strings"

	"dispatch/pkg/security/csp"
)

// SecurityHeaders sets a Content-Security-Policy chosen by path prefix,
// falling back to def, plus the usual hardening headers.
func SecurityHeaders(def *csp.CSPBuilder, byPrefix map[string]*csp.CSPBuilder) func(http.Handler) http.Handler {
	type rendered struct{ name, value string }
	render := func(b *csp.CSPBuilder) rendered { return rendered{b.HeaderName(), b.Build()} }

	fallback := render(def)
	prefixes := make([]string, 0, len(byPrefix))
	policies := make(map[string]rendered, len(byPrefix))
	for p, b := range byPrefix {
		prefixes = append(prefixes, p)
		policies[p] = render(b)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy, best := fallback, ""
			for _, p := range prefixes {
				// longest matching prefix wins
				if strings.HasPrefix(r.URL.Path, p) && len(p) > len(best) {
					policy, best = policies[p], p
				}
			}
			h := w.Header()
			if policy.value != "" {
				h.Set(policy.name, policy.value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}
