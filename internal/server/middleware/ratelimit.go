package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client's limiter is kept before eviction.
const staleAfter = 10 * time.Minute

// RateLimit returns middleware that applies per-client token-bucket rate
// limiting. Each unique client IP gets its own limiter allowing rps requests
// per second with the given burst.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiters := &clientLimiters{
		byIP:  make(map[string]*clientLimiter),
		rps:   rate.Limit(rps),
		burst: burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(extractClientIP(r)) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"status":"error","message":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu    sync.Mutex
	byIP  map[string]*clientLimiter
	rps   rate.Limit
	burst int
}

func (c *clientLimiters) allow(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	cl, ok := c.byIP[ip]
	if !ok {
		// Opportunistic eviction keeps the map bounded without a sweeper
		// goroutine.
		for k, v := range c.byIP {
			if now.Sub(v.lastSeen) > staleAfter {
				delete(c.byIP, k)
			}
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.byIP[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}

// extractClientIP attempts to determine the real client IP from standard
// proxy headers, falling back to the direct remote address.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
