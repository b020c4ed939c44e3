package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/clientes/pkg/middleware"
)

func newLimited(t *testing.T, cfg middleware.RateLimitConfig) http.Handler {
	t.Helper()
	require.NoError(t, cfg.Finalize(nil))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rl := middleware.NewRateLimiter(&cfg, logger)
	return rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/clientes/page/1", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitBurstThenReject(t *testing.T) {
	h := newLimited(t, middleware.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:5001").Code)

	rec := hit(h, "10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitPerClient(t *testing.T) {
	h := newLimited(t, middleware.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:5000").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	h := newLimited(t, middleware.RateLimitConfig{Enabled: false, RPS: 0.001, Burst: 1})

	for range 5 {
		assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:5000").Code)
	}
}

func TestRateLimitConfigDefaults(t *testing.T) {
	var cfg middleware.RateLimitConfig
	require.NoError(t, cfg.Finalize(nil))

	assert.Equal(t, 10.0, cfg.RPS)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, "15m", cfg.IdleTTL)
}

func TestRateLimitCleanupKeepsFresh(t *testing.T) {
	cfg := middleware.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	require.NoError(t, cfg.Finalize(nil))
	rl := middleware.NewRateLimiter(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.True(t, rl.Allow("a"))
	rl.Cleanup()
	assert.False(t, rl.Allow("a"), "fresh limiter should survive cleanup")
}
