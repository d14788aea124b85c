package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/utils"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Token bucket, refilled lazily from the server clock so every replica agrees.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local tokens = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call("HMGET", key, "tokens", "last_refill")
local current_tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or 0

local now = redis.call("TIME")
local now_ms = now[1] * 1000 + math.floor(now[2] / 1000)

if last_refill > 0 then
    local elapsed = now_ms - last_refill
    local tokens_to_add = math.floor(elapsed / interval_ms * tokens)
    current_tokens = math.min(capacity, current_tokens + tokens_to_add)
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call("HSET", key, "tokens", current_tokens, "last_refill", now_ms)
redis.call("EXPIRE", key, 3600)

return {allowed, current_tokens, capacity}`)

type RateLimitMiddleware struct {
	config      *config.RateLimitConfig
	redisClient redis.UniversalClient
	logger      *logrus.Logger
}

// NewRateLimitMiddleware creates the limiter. With a nil client buckets are
// kept in process memory, which is per replica.
func NewRateLimitMiddleware(cfg *config.RateLimitConfig, redisClient redis.UniversalClient, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Handle limits every API request per user or client IP
func (r *RateLimitMiddleware) Handle() fiber.Handler {
	return r.limit("api", r.config.Burst, r.config.RPS)
}

// Login is a stricter per-IP limit for credential endpoints
func (r *RateLimitMiddleware) Login() fiber.Handler {
	return r.limit("login", r.config.LoginBurst, r.config.LoginRPS)
}

func (r *RateLimitMiddleware) limit(scope string, capacity, rate int) fiber.Handler {
	if !r.config.Enabled || capacity <= 0 || rate <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	if r.redisClient == nil {
		return r.localLimit(scope, capacity, rate)
	}

	return func(c *fiber.Ctx) error {
		if r.exempt(c) {
			return c.Next()
		}

		key := r.generateKey(scope, c)
		allowed, remaining, err := r.checkRateLimit(c.UserContext(), key, capacity, rate)
		if err != nil {
			r.logger.WithError(err).Error("Rate limit check failed")
			// Fail open on Redis errors
			return c.Next()
		}

		r.setRateLimitHeaders(c, rate, remaining)

		if !allowed {
			return r.reject(scope, key, c)
		}
		return c.Next()
	}
}

// localLimit approximates the bucket with a sliding window sized to refill
// capacity tokens at rate per window.
func (r *RateLimitMiddleware) localLimit(scope string, capacity, rate int) fiber.Handler {
	expiration := r.config.WindowSize * time.Duration(capacity) / time.Duration(rate)
	if expiration < time.Second {
		expiration = time.Second
	}

	return limiter.New(limiter.Config{
		Next:              r.exempt,
		Max:               capacity,
		Expiration:        expiration,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return r.generateKey(scope, c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return r.reject(scope, r.generateKey(scope, c), c)
		},
	})
}

func (r *RateLimitMiddleware) exempt(c *fiber.Ctx) bool {
	return utils.HasAnyPrefix(c.Path(), r.config.ExemptPaths)
}

func (r *RateLimitMiddleware) reject(scope, key string, c *fiber.Ctx) error {
	metrics.RecordRateLimitDrop(scope)
	r.logger.WithFields(logrus.Fields{
		"key":      key,
		"path":     c.Path(),
		"method":   c.Method(),
		"username": GetUsername(c),
	}).Warn("Rate limit exceeded")

	return RespondError(c, apperrors.NewAppError(apperrors.CodeRateLimited, "Rate limit exceeded. Please try again later.", nil))
}

// generateKey prefers the authenticated user and falls back to the client IP
func (r *RateLimitMiddleware) generateKey(scope string, c *fiber.Ctx) string {
	if username := GetUsername(c); username != "" && scope != "login" {
		return fmt.Sprintf("ratelimit:%s:user:%s", scope, username)
	}
	return fmt.Sprintf("ratelimit:%s:ip:%s", scope, clientIP(c))
}

// clientIP extracts the real client IP
func clientIP(c *fiber.Ctx) string {
	// Set by the load balancer
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

func (r *RateLimitMiddleware) checkRateLimit(ctx context.Context, key string, capacity, rate int) (allowed bool, remaining int, err error) {
	intervalMs := int(r.config.WindowSize.Milliseconds())

	result, err := tokenBucket.Run(ctx, r.redisClient, []string{key}, capacity, rate, intervalMs, 1).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit script: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 3 {
		return false, 0, fmt.Errorf("unexpected script result format")
	}

	allowedInt, ok := resultSlice[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("failed to parse allowed result")
	}

	remainingInt, ok := resultSlice[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("failed to parse remaining result")
	}

	return allowedInt == 1, int(remainingInt), nil
}

func (r *RateLimitMiddleware) setRateLimitHeaders(c *fiber.Ctx, rate, remaining int) {
	resetTime := time.Now().Add(r.config.WindowSize).Truncate(time.Second)

	c.Set("X-RateLimit-Limit", strconv.Itoa(rate))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
	c.Set("X-RateLimit-Window", r.config.WindowSize.String())

	if remaining <= 0 {
		retryAfter := int(time.Until(resetTime).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
	}
}
