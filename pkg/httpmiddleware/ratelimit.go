package httpmiddleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	// RPS is the sustained request rate allowed per client.
	RPS float64
	// Burst is the maximum burst size per client.
	Burst int
	// EntryTTL is how long an idle client's bucket is kept before cleanup.
	EntryTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client key (remote IP).
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
	ttl     time.Duration
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.ttl)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit returns a middleware limiting each client (by remote IP) to a
// token bucket of cfg.RPS sustained requests with cfg.Burst headroom.
// Rejected requests get 429 with a Retry-After hint. Idle buckets are
// dropped after cfg.EntryTTL by a background sweep tied to stop.
func RateLimit(stop <-chan struct{}, cfg RateLimitConfig) Middleware {
	ttl := cfg.EntryTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		ttl:     ttl,
	}

	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies a client by its remote IP, ignoring the port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
