// Package security adds defensive response headers and flags request
// paths that look like scanner probes.
package security

import (
	"log/slog"
	"net/http"
	"strings"

	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

// Headers sets the baseline security headers for an API that only ever
// serves JSON.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// probePatterns are path fragments that legitimate clients never send.
var probePatterns = []string{
	"../", "..\\", ".env", ".git", ".ssh", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", "etc/passwd", "cmd.exe",
	"<script", "javascript:", "union select",
}

// IsProbe reports whether the request path matches a known probe
// pattern.
func IsProbe(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	for _, pattern := range probePatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// DetectProbes logs probe-looking requests and rejects them with 404
// before they reach the router.
func DetectProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsProbe(r) {
			slog.WarnContext(r.Context(), "Suspicious request rejected",
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, r.RemoteAddr)
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
