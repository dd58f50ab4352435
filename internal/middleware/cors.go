package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or "*.domain" subdomain patterns.
	// An empty list denies every cross-origin request.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns the API defaults. x-auth is both accepted and
// exposed so browser clients can read the token from signup and login.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", AuthHeader, RequestIDHeader, "Accept", "Accept-Language"},
		ExposedHeaders: []string{AuthHeader, RequestIDHeader, "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         86400,
	}
}

type corsPolicy struct {
	exact    map[string]bool
	suffixes []string // ".example.com" for "*.example.com"
	methods  string
	headers  string
	exposed  string
	maxAge   string
	creds    bool
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		exact:   make(map[string]bool, len(cfg.AllowedOrigins)),
		methods: strings.Join(cfg.AllowedMethods, ", "),
		headers: strings.Join(cfg.AllowedHeaders, ", "),
		exposed: strings.Join(cfg.ExposedHeaders, ", "),
		creds:   cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(origin)
		if suffix, ok := strings.CutPrefix(origin, "*"); ok && strings.HasPrefix(suffix, ".") {
			p.suffixes = append(p.suffixes, suffix)
			continue
		}
		p.exact[origin] = true
	}
	return p
}

// allows reports whether origin may call the API. A "*.example.com" pattern
// matches "https://sub.example.com" but neither "https://example.com" nor
// "https://notexample.com".
func (p *corsPolicy) allows(origin string) bool {
	origin = strings.ToLower(origin)
	if p.exact[origin] {
		return true
	}

	host := origin
	if _, rest, ok := strings.Cut(origin, "://"); ok {
		host = rest
	}
	for _, suffix := range p.suffixes {
		if sub, ok := strings.CutSuffix(host, suffix); ok && sub != "" {
			return true
		}
	}
	return false
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// Requests without an Origin header pass through untouched. Preflights from
// unknown origins get 403; other requests from them get no CORS headers.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			preflight := r.Method == http.MethodOptions
			if !policy.allows(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if policy.creds {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if policy.exposed != "" {
				h.Set("Access-Control-Expose-Headers", policy.exposed)
			}

			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", policy.methods)
			h.Set("Access-Control-Allow-Headers", policy.headers)
			if policy.maxAge != "" {
				h.Set("Access-Control-Max-Age", policy.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
