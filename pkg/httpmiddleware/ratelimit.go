package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window limiter.
type RateLimitConfig struct {
	// Max is the number of requests a key may make per Window.
	Max    int
	Window time.Duration

	// Methods restricts limiting to the listed HTTP methods. Empty limits
	// every request.
	Methods []string

	// KeyFunc identifies the client. Defaults to the client IP.
	KeyFunc func(*http.Request) string
}

// window counts requests in the current and the previous fixed window.
type window struct {
	start time.Time
	curr  float64
	prev  float64
}

type limiter struct {
	max     int
	size    time.Duration
	methods map[string]struct{}
	key     func(*http.Request) string
	now     func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func newLimiter(cfg RateLimitConfig) *limiter {
	l := &limiter{
		max:     cfg.Max,
		size:    cfg.Window,
		key:     cfg.KeyFunc,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	if l.key == nil {
		l.key = clientIP
	}
	if len(cfg.Methods) > 0 {
		l.methods = make(map[string]struct{}, len(cfg.Methods))
		for _, m := range cfg.Methods {
			l.methods[strings.ToUpper(m)] = struct{}{}
		}
	}
	return l
}

func (l *limiter) applies(r *http.Request) bool {
	if l.methods == nil {
		return true
	}
	_, ok := l.methods[r.Method]
	return ok
}

// take consumes one request for key. The previous window is weighted by how
// much of it still overlaps the sliding window ending at now.
func (l *limiter) take(key string, now time.Time) (remaining int, reset time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.windows[key]
	if !found {
		w = &window{start: now.Truncate(l.size)}
		l.windows[key] = w
	}
	switch elapsed := now.Sub(w.start); {
	case elapsed >= 2*l.size:
		w.start, w.curr, w.prev = now.Truncate(l.size), 0, 0
	case elapsed >= l.size:
		w.start, w.curr, w.prev = w.start.Add(l.size), 0, w.curr
	}

	overlap := 1 - float64(now.Sub(w.start))/float64(l.size)
	used := w.prev*math.Max(overlap, 0) + w.curr
	reset = w.start.Add(l.size)
	if used >= float64(l.max) {
		return 0, reset, false
	}
	w.curr++
	return max(int(float64(l.max)-used-1), 0), reset, true
}

// evict drops keys idle for at least two windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, w := range l.windows {
		if now.Sub(w.start) >= 2*l.size {
			delete(l.windows, k)
		}
	}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.applies(r) {
			next.ServeHTTP(w, r)
			return
		}
		now := l.now()
		remaining, reset, ok := l.take(l.key(r), now)

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		if !ok {
			wait := math.Ceil(max(reset.Sub(now), 0).Seconds())
			h.Set("Retry-After", strconv.Itoa(int(wait)))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit enforces a per-client sliding window limit without background
// eviction.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware
}

// RateLimitWithCleanup is RateLimit plus a goroutine that evicts idle clients
// every two windows until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		t := time.NewTicker(2 * l.size)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				l.evict(now)
			}
		}
	}()
	return l.middleware
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
