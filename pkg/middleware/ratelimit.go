package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/clientes/pkg/handlers"
)

// ErrRateLimited indicates the client exceeded its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter keeps a token bucket per client address.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	cfg     RateLimitConfig
	logger  *slog.Logger
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter from cfg.
func NewRateLimiter(cfg *RateLimitConfig, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		cfg:     *cfg,
		logger:  logger,
	}
}

// Allow reports whether the client identified by key may make a request now.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// Middleware returns middleware that rejects over-budget clients with 429.
// Passes through when disabled.
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if !l.Allow(clientKey(r)) {
				retry := int(math.Ceil(1 / l.cfg.RPS))
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				handlers.RespondError(w, l.logger, http.StatusTooManyRequests, ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Cleanup drops limiters idle longer than the configured TTL.
func (l *RateLimiter) Cleanup() {
	cutoff := time.Now().Add(-l.cfg.IdleTTLDuration())

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is cancelled.
func (l *RateLimiter) StartJanitor(ctx context.Context) {
	if !l.cfg.Enabled {
		return
	}

	t := time.NewTicker(time.Minute)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)
	l.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
