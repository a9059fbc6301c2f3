// Package middleware provides HTTP middleware for the SĀGARA API.
package middleware

import "net/http"

// CORS returns middleware that handles CORS headers for the allowed origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed, explicit := matchOrigin(allowedOrigins, origin)
			if allowed && origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Add("Vary", "Origin")
				// credentials only for explicitly listed origins, never for "*"
				if explicit {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchOrigin(allowedOrigins []string, origin string) (allowed, explicit bool) {
	for _, o := range allowedOrigins {
		if o == origin && o != "*" {
			return true, true
		}
		if o == "*" {
			allowed = true
		}
	}
	return allowed, false
}
