package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smartbites/backend/internal/apperrors"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter is a fixed-window counter kept in Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// NewSuggestionRateLimiter limits suggestion requests per user per hour
func NewSuggestionRateLimiter(redisClient *redis.Client, perHour int) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     perHour,
		KeyPrefix: "rate_limit:suggestions",
	})
}

func (rl *RateLimiter) Limit() int { return rl.config.Limit }

func (rl *RateLimiter) key(subject string, now time.Time) (string, time.Time) {
	windowStart := now.Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix()), windowStart
}

// IsAllowed counts a request for subject.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (bool, int, time.Time, error) {
	key, windowStart := rl.key(subject, time.Now())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// GetRemainingRequests reports the quota left without counting a request
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, subject string) (int, time.Time, error) {
	key, windowStart := rl.key(subject, time.Now())
	resetTime := windowStart.Add(rl.config.Window)

	count, err := rl.redis.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return rl.config.Limit, resetTime, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}

	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetTime, nil
}

const ipLimiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter is an in-process token bucket per client IP. Buckets idle
// for longer than idleTTL are dropped on the next sweep.
type IPRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Limit(rps),
		burst:     burst,
		idleTTL:   ipLimiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow takes a token from ip's bucket
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()
	return entry.limiter.AllowN(now, 1)
}

// sweep drops idle buckets; callers hold mu
func (l *IPRateLimiter) sweep(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// SuggestionLimit counts authenticated users against the Redis window and
// everyone else, or everyone when Redis is missing or failing, against the
// per-IP bucket. Either argument may be nil.
func SuggestionLimit(limiter *RateLimiter, fallback *IPRateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := UserID(c); ok && limiter != nil {
			allowed, remaining, resetTime, err := limiter.IsAllowed(c.Request.Context(), userID.String())
			if err == nil {
				c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
				c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
				c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

				if !allowed {
					apperrors.Respond(c, apperrors.New(apperrors.CodeTooManyRequests, "rate limit exceeded").
						With("message", fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", limiter.Limit(), limiter.config.Window)).
						With("rate_limit_remaining", remaining).
						With("rate_limit_reset", resetTime.Unix()).
						With("retry_after", int(time.Until(resetTime).Seconds())))
					return
				}
				c.Next()
				return
			}
			logger.Warn("rate limit check failed, using local limiter", zap.Error(err))
		}

		if fallback != nil && !fallback.Allow(c.ClientIP()) {
			apperrors.Respond(c, apperrors.New(apperrors.CodeTooManyRequests, "rate limit exceeded"))
			return
		}
		c.Next()
	}
}
