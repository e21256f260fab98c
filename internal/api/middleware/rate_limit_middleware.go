package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/cartorder/internal/api/response"
)

// 超過此數量時清掉已補滿的 bucket
const maxIdleBuckets = 10000

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter 每個 key 一個 token bucket，取用時才依經過時間補充
// capacity: bucket 上限，ratePS: 每秒補充的 token 數
type RateLimiter struct {
	mu       sync.Mutex
	capacity float64
	ratePS   float64
	buckets  map[string]*tokenBucket
	now      func() time.Time
}

func NewRateLimiter(capacity, ratePS int) *RateLimiter {
	if capacity <= 0 || ratePS <= 0 {
		panic("rate limiter capacity and ratePS must be positive")
	}
	return &RateLimiter{
		capacity: float64(capacity),
		ratePS:   float64(ratePS),
		buckets:  make(map[string]*tokenBucket),
		now:      time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxIdleBuckets {
			l.evictFull(now)
		}
		b = &tokenBucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}

	l.refill(b, now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *RateLimiter) refill(b *tokenBucket, now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * l.ratePS
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now
}

func (l *RateLimiter) evictFull(now time.Time) {
	for key, b := range l.buckets {
		l.refill(b, now)
		if b.tokens >= l.capacity {
			delete(l.buckets, key)
		}
	}
}

// RateLimitMiddleware 以 client IP 限流，需放在 RealIP 之後
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				response.ErrorJSON(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
