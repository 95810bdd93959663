package middlewares

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sbilibin2017/gw-blog/internal/logger"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter limits requests per client IP using a token bucket per IP.
// The client IP is the host part of RemoteAddr; put chi's RealIP in front
// only when a trusted proxy sets the forwarding headers.
type IPRateLimiter struct {
	ips   map[string]*visitor
	mu    sync.Mutex
	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewIPRateLimiter creates a per-IP limiter. limit is events per second.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*visitor),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

// PerMinute creates a limiter allowing n requests per minute per IP.
func PerMinute(n, burst int) *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(float64(n)/60.0), burst)
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Sweep forgets clients not seen for maxIdle and returns how many were removed.
func (l *IPRateLimiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	removed := 0
	for ip, v := range l.ips {
		if v.lastSeen.Before(cutoff) {
			delete(l.ips, ip)
			removed++
		}
	}
	return removed
}

// Run sweeps idle clients every interval until ctx is done.
func (l *IPRateLimiter) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(maxIdle); n > 0 {
				logger.Log.Debugw("rate limiter sweep", "removed", n)
			}
		}
	}
}

// clientIP returns RemoteAddr without its port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware returns 429 once the client IP exceeds its rate.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.allow(ip) {
			logger.Log.Warnw("rate limit exceeded",
				"request_id", RequestIDFromContext(r.Context()),
				"ip", ip,
				"uri", r.RequestURI,
			)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
