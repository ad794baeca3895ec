package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hardeningHeaders are set on every response, whatever its status.
var hardeningHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"X-XSS-Protection":        "1; mode=block",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

func assertHardened(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for name, want := range hardeningHeaders {
		assert.Equal(t, want, rec.Header().Get(name), "header %s", name)
	}
}

func serve(h http.Handler, method, path, origin, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	cfg := testConfig()
	cfg.Security.MaxBodyBytes = 64
	h := New(cfg, newTestLogger()).Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"search found", http.MethodPost, "/search", `{"target":2,"values":[1,2],"workers":2}`, http.StatusOK},
		{"search not divisible", http.MethodPost, "/search", `{"target":2,"values":[1,2,3],"workers":2}`, http.StatusBadRequest},
		{"search bad json", http.MethodPost, "/search", `{"target":`, http.StatusBadRequest},
		{"search body too large", http.MethodPost, "/search", `{"values":[` + strings.Repeat("1,", 64) + `1]}`, http.StatusRequestEntityTooLarge},
		{"search wrong method", http.MethodGet, "/search", "", http.StatusMethodNotAllowed},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.path, "", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assertHardened(t, rec)
		})
	}
}

func TestSearchPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.Burst = 1
	h := New(cfg, newTestLogger()).Handler()

	// Spend the only token so that a rate-limited request would get 429.
	require.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/search", "", `{"target":1,"values":[1],"workers":1}`).Code)

	rec := serve(h, http.MethodOptions, "/search", "https://app.example", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assertHardened(t, rec)
}

func TestSearchCORSOrigins(t *testing.T) {
	const body = `{"target":3,"values":[1,2,3,4],"workers":2}`

	tests := []struct {
		name       string
		enable     bool
		origins    []string
		origin     string
		wantOrigin string
		wantVary   bool
	}{
		{"wildcard answers any origin", true, []string{"*"}, "https://a.example", "*", false},
		{"wildcard answers without origin", true, []string{"*"}, "", "*", false},
		{"listed origin is echoed", true, []string{"https://a.example", "https://b.example"}, "https://b.example", "https://b.example", true},
		{"unlisted origin gets no grant", true, []string{"https://a.example"}, "https://evil.example", "", false},
		{"disabled CORS grants nothing", false, []string{"*"}, "https://a.example", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Security.EnableCORS = tt.enable
			cfg.Security.AllowedOrigins = tt.origins
			h := New(cfg, newTestLogger()).Handler()

			rec := serve(h, http.MethodPost, "/search", tt.origin, body)

			require.Equal(t, http.StatusOK, rec.Code, "the search itself is served regardless of CORS")
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, rec.Header().Get("Vary") == "Origin")

			var resp SearchResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.True(t, resp.Found)
		})
	}
}

func TestSearchLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Security.MaxValues = 4
	cfg.Security.MaxWorkers = 2
	h := New(cfg, newTestLogger()).Handler()

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"at both limits", `{"target":4,"values":[1,2,3,4],"workers":2}`, http.StatusOK, ""},
		{"too many values", `{"target":4,"values":[1,2,3,4,5],"workers":1}`, http.StatusBadRequest, `"values"`},
		{"too many workers", `{"target":4,"values":[1,2,3,4],"workers":4}`, http.StatusBadRequest, `"workers"`},
		{"adaptive workers stay under the cap", `{"target":1,"values":[1,2,3,4]}`, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodPost, "/search", "", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assertHardened(t, rec)
			if tt.field == "" {
				var resp SearchResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.LessOrEqual(t, resp.Workers, cfg.Security.MaxWorkers)
				assert.True(t, resp.Found)
				return
			}
			var e errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
			assert.Contains(t, e.Error, tt.field)
		})
	}
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()
	assert.True(t, cfg.EnableCORS)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.ElementsMatch(t, []string{"GET", "POST", "OPTIONS"}, cfg.AllowedMethods)
	assert.Equal(t, 10_000_000, cfg.MaxValues)
	assert.Equal(t, 1024, cfg.MaxWorkers)
	assert.Positive(t, cfg.MaxBodyBytes)
}
