package middleware

import (
	"net/http"
	"slices"
	"strconv"
)

// CORS allows browser clients from origins to call the read-only search
// API. A "*" entry admits every origin; an empty list disables the headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	const (
		methods = "GET, POST, OPTIONS"
		headers = "Content-Type, " + HeaderRequestID
		maxAge  = 86400
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !(slices.Contains(origins, "*") || slices.Contains(origins, origin)) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
