package httpx

import "net/http"

// corsAllowedHeaders lists the request headers browsers are permitted to
// send cross-origin. Kept in sync with what the site frontend actually uses.
const corsAllowedHeaders = "Authorization, Content-Type, X-Request-ID"

// CORSMiddleware allows cross-origin calls from any origin. The API is
// consumed by a public marketing site served from a different domain, so the
// wildcard is deliberate; authorization still happens per-request via bearer
// tokens, never via cookies.
func CORSMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
