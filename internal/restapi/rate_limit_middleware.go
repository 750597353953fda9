package restapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"bikeflow.dev/internal/models"
)

const (
	noKeyBucket = "__no_key__"

	// Limiters idle for longer than this are dropped by cleanup.
	limiterIdleTTL = 10 * time.Minute
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware provides per-API-key rate limiting
type RateLimitMiddleware struct {
	mu        sync.Mutex
	limiters  map[string]*keyLimiter
	rateLimit rate.Limit
	burstSize int
	ticker    *time.Ticker
	done      chan struct{}
	stopOnce  sync.Once
}

// NewRateLimitMiddleware allows ratePerInterval requests per interval for each
// API key, with bursts of the same size. A zero rate rejects every request; a
// negative rate disables limiting.
func NewRateLimitMiddleware(ratePerInterval int, interval time.Duration) *RateLimitMiddleware {
	var limit rate.Limit
	switch {
	case ratePerInterval < 0:
		limit = rate.Inf
	case ratePerInterval == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(ratePerInterval))
	}

	rl := &RateLimitMiddleware{
		limiters:  make(map[string]*keyLimiter),
		rateLimit: limit,
		burstSize: ratePerInterval,
		ticker:    time.NewTicker(time.Minute),
		done:      make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimitMiddleware) getLimiter(apiKey string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[apiKey]
	if !ok {
		entry = &keyLimiter{limiter: rate.NewLimiter(rl.rateLimit, max(rl.burstSize, 0))}
		rl.limiters[apiKey] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Handler wraps next with the per-key limit.
func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rateLimit == rate.Inf {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.URL.Query().Get("key")
		if apiKey == "" {
			apiKey = noKeyBucket
		}

		if !rl.getLimiter(apiKey, time.Now()).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sendRateLimitExceeded sends a 429 Too Many Requests response
func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := time.Hour
	if rl.rateLimit > 0 {
		retryAfter = time.Duration(float64(time.Second) / float64(rl.rateLimit))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(models.NewResponse(http.StatusTooManyRequests, nil,
		"Rate limit exceeded. Please try again later."))
}

func (rl *RateLimitMiddleware) cleanup() {
	for {
		select {
		case now := <-rl.ticker.C:
			rl.evictIdle(now)
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimitMiddleware) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(rl.limiters, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		rl.ticker.Stop()
		close(rl.done)
	})
}
