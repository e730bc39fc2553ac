package api

import (
	"net"
	"net/http"
	"sync"

	"lendhub/internal/config"

	"golang.org/x/time/rate"
)

// CallerLimiter rate-limits requests per caller. The sharer header is
// the natural key; anonymous endpoints fall back to the remote host.
type CallerLimiter struct {
	cfg      config.RateLimitConfig
	limiters sync.Map // map[string]*rate.Limiter
}

func NewCallerLimiter(cfg config.RateLimitConfig) *CallerLimiter {
	return &CallerLimiter{cfg: cfg}
}

func (l *CallerLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(l.callerKey(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *CallerLimiter) callerKey(r *http.Request) string {
	if id := r.Header.Get(sharerHeader); id != "" {
		return id
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (l *CallerLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
