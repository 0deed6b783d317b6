package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a per-client token bucket. Buckets refill fully once a
// minute and partially in between.
type RateLimiter struct {
	mu             sync.Mutex
	requestsPerMin int
	clients        map[string]*bucket
	staleAfter     time.Duration
	now            func() time.Time
	stop           chan struct{}
	stopOnce       sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter starts a limiter allowing requestsPerMin requests per
// client and a background sweep of idle clients every cleanupInterval.
func NewRateLimiter(requestsPerMin int, cleanupInterval time.Duration) *RateLimiter {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		requestsPerMin: requestsPerMin,
		clients:        make(map[string]*bucket),
		staleAfter:     10 * time.Minute,
		now:            func() time.Time { return time.Now().UTC() },
		stop:           make(chan struct{}),
	}
	go rl.cleanupLoop(cleanupInterval)
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow takes a token for client. It returns whether the request may
// proceed, the tokens left and when the bucket is next refilled.
func (rl *RateLimiter) Allow(client string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[client]
	if !ok {
		b = &bucket{tokens: rl.requestsPerMin, lastRefill: now}
		rl.clients[client] = b
	}

	elapsed := now.Sub(b.lastRefill)
	if elapsed >= time.Minute {
		b.tokens = rl.requestsPerMin
		b.lastRefill = now
	} else if add := int(float64(rl.requestsPerMin) * elapsed.Seconds() / 60.0); add > 0 {
		b.tokens = min(b.tokens+add, rl.requestsPerMin)
		b.lastRefill = now
	}

	reset := b.lastRefill.Add(time.Minute)
	if b.tokens > 0 {
		b.tokens--
		return true, b.tokens, reset
	}
	return false, 0, reset
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)
			allowed, remaining, reset := rl.Allow(client)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				log.Printf("Rate limit exceeded for %s on %s", client, r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(time.Until(reset).Seconds()))))
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup removes clients idle for longer than staleAfter.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for client, b := range rl.clients {
		if now.Sub(b.lastRefill) > rl.staleAfter {
			delete(rl.clients, client)
		}
	}
}

// clientIP is the host part of RemoteAddr. Forwarded headers are ignored:
// the server is meant to be reached directly.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
