package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paymall/site-api/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, h http.Handler, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAllowsBurstThenRejects(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: 60e9, Burst: 3}
	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	for i := range 3 {
		rec := doRequest(t, h, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := doRequest(t, h, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: 60e9, Burst: 1}
	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	require.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(t, h, "10.0.0.1").Code)

	// A different client still has a full bucket.
	require.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.2").Code)
}

func TestIPKeyExtractorHeaderPrecedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1234"

	require.Equal(t, "192.0.2.9", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Real-IP", "203.0.113.5")
	require.Equal(t, "203.0.113.5", httpx.IPKeyExtractor(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	require.Equal(t, "198.51.100.7", httpx.IPKeyExtractor(req))
}
