package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

// rateLimiter keeps a token bucket per client IP. Idle entries are swept
// opportunistically on the next allow call, so the limiter owns no goroutine
// or ticker.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
}

type clientLimiter struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	return &rateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		idleAfter: 10 * time.Minute,
		lastSweep: time.Now(),
	}
}

// sweep drops entries idle longer than idleAfter. Caller holds mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for ip, c := range rl.clients {
		if now.Sub(c.seen) > rl.idleAfter {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		rl.sweep(now)
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.seen = now
	return c.limiter.Allow()
}

// middleware rejects clients exceeding the per-IP rate with 429.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.allow(ip) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many attempts, try again later"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
