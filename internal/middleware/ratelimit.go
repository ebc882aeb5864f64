package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 30 * time.Minute
	limiterSweepTick = 5 * time.Minute
)

type ipLimiter struct {
	limiter *rate.Limiter

	mu   sync.Mutex
	last time.Time
}

func (l *ipLimiter) touch(now time.Time) {
	l.mu.Lock()
	l.last = now
	l.mu.Unlock()
}

func (l *ipLimiter) idleSince(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.last)
}

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	limiters sync.Map // map[string]*ipLimiter
	now      func() time.Time
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{rps: rate.Limit(rps), burst: burst, now: time.Now}
}

func (rl *RateLimiter) limiterFor(ip string) *ipLimiter {
	if v, ok := rl.limiters.Load(ip); ok {
		return v.(*ipLimiter)
	}
	fresh := &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst), last: rl.now()}
	v, _ := rl.limiters.LoadOrStore(ip, fresh)
	return v.(*ipLimiter)
}

// Handler rejects requests over the limit with 429.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := rl.limiterFor(remoteIP(r))
		if !lim.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		lim.touch(rl.now())
		next.ServeHTTP(w, r)
	})
}

// Sweep drops limiters idle for longer than limiterIdleTTL.
func (rl *RateLimiter) Sweep() {
	now := rl.now()
	rl.limiters.Range(func(key, val any) bool {
		if val.(*ipLimiter).idleSince(now) > limiterIdleTTL {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Run sweeps idle limiters until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) error {
	t := time.NewTicker(limiterSweepTick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			rl.Sweep()
		}
	}
}

// remoteIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
