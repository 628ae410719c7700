package router

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

// HeaderAPIKey carries the operator key for tenant management endpoints.
const HeaderAPIKey = "X-API-Key"

// middlewareAPIKey rejects non-public routes without a known key. With no keys
// configured the guard is a pass-through and a warning is logged once.
func middlewareAPIKey(keys []string, public map[string]map[string]struct{}) Middleware {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			valid = append(valid, []byte(k))
		}
	}

	if len(valid) == 0 {
		slog.Warn("api key guard disabled, non-public endpoints are unauthenticated", "config_key", "app.server.api_keys")
	}

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.Method][matchedRoutePath(r)]; ok {
				next.ServeHTTP(w, r)
				return
			}

			presented := []byte(strings.TrimSpace(r.Header.Get(HeaderAPIKey)))
			for _, k := range valid {
				if subtle.ConstantTimeCompare(presented, k) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
		})
	}
}
