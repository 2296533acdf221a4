package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doRequest(handler http.Handler, path string, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	m := NewRateLimitMiddleware(5, 5)
	handler := m.Handler(okHandler())

	for i := 0; i < 5; i++ {
		rec := doRequest(handler, "/api/videos", "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := doRequest(handler, "/api/videos", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeErrorCode(t, rec))
}

func TestRateLimitAuthBucketIsStricter(t *testing.T) {
	m := NewRateLimitMiddleware(100, 3)
	handler := m.Handler(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "/api/auth/login", "10.0.0.2")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := doRequest(handler, "/api/auth/login", "10.0.0.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// The general bucket for the same client is untouched.
	rec = doRequest(handler, "/api/videos", "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitTracksClientsSeparately(t *testing.T) {
	m := NewRateLimitMiddleware(2, 2)
	handler := m.Handler(okHandler())

	for i := 0; i < 2; i++ {
		doRequest(handler, "/api/videos", "10.0.0.3")
	}
	rec := doRequest(handler, "/api/videos", "10.0.0.3")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doRequest(handler, "/api/videos", "10.0.0.4")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitExemptsOperationalEndpoints(t *testing.T) {
	m := NewRateLimitMiddleware(1, 1)
	handler := m.Handler(okHandler())

	for i := 0; i < 20; i++ {
		rec := doRequest(handler, "/health", "10.0.0.5")
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = doRequest(handler, "/metrics", "10.0.0.5")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:44321"
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 203.0.113.9")
	assert.Equal(t, "192.0.2.1", ClientIP(req))
}
