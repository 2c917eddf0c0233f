package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_UnderLimit(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	handler := RateLimit(stop, RateLimitConfig{RPS: 1, Burst: 5})(okHandler())

	for i := range 5 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	handler := RateLimit(stop, RateLimitConfig{RPS: 0.001, Burst: 2})(okHandler())

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:9999"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimit_DifferentIPs(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	handler := RateLimit(stop, RateLimitConfig{RPS: 0.001, Burst: 1})(okHandler())

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	req1.RemoteAddr = "10.0.0.1:1234"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	// An independent bucket per client.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.RemoteAddr = "10.0.0.2:1234"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)

	// Same IP again, different port: still the same bucket.
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.RemoteAddr = "10.0.0.1:5678"
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
}

func TestRateLimit_CleanupDropsIdleClients(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     1,
		burst:   1,
		ttl:     10 * time.Millisecond,
	}

	rl.allow("10.0.0.1")
	require.Len(t, rl.clients, 1)

	time.Sleep(20 * time.Millisecond)
	rl.cleanup()

	assert.Empty(t, rl.clients)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:4444"
	assert.Equal(t, "192.168.1.1", clientKey(req))

	// No port: fall back to the raw value.
	req.RemoteAddr = "192.168.1.1"
	assert.Equal(t, "192.168.1.1", clientKey(req))
}
