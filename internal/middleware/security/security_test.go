package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsProbe(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/accounts", false},
		{"/api/months/2025-06/projection", false},
		{"/.env", true},
		{"/wp-admin/setup.php", true},
		{"/api/../../etc/passwd", true},
		{"/.git/config", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := &http.Request{URL: httptest.NewRequest(http.MethodGet, "http://host"+tt.path, nil).URL}
			if got := IsProbe(r); got != tt.want {
				t.Errorf("IsProbe(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDetectProbes(t *testing.T) {
	handler := DetectProbes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.env", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("probe = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("legit request = %d, want 200", rec.Code)
	}
}

func TestHeaders(t *testing.T) {
	handler := Headers(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
