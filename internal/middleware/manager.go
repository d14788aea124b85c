package middleware

import (
	"context"
	"fmt"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Manager holds all middleware instances
type Manager struct {
	Auth        *AuthMiddleware
	Idempotency *IdempotencyMiddleware
	RateLimit   *RateLimitMiddleware
	ErrorLogger *ErrorLoggerMiddleware
	RedisClient redis.UniversalClient // nil when Redis is disabled
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewManager connects to Redis when enabled and builds every middleware.
func NewManager(cfg *config.Config, authenticator Authenticator, logger *logrus.Logger) (*Manager, error) {
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := NewRedisClient(&cfg.Redis, &cfg.AWS, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
		redisClient = client
	} else {
		logger.Info("Redis disabled, rate limits are per process and idempotency keys are ignored")
	}

	return NewManagerWithRedis(cfg, authenticator, redisClient, logger), nil
}

// NewManagerWithRedis builds the middleware around an existing client, which may be nil.
func NewManagerWithRedis(cfg *config.Config, authenticator Authenticator, redisClient redis.UniversalClient, logger *logrus.Logger) *Manager {
	return &Manager{
		Auth:        NewAuthMiddleware(authenticator, logger),
		Idempotency: NewIdempotencyMiddleware(redisClient, cfg.Redis.IdempotencyTTL, logger),
		RateLimit:   NewRateLimitMiddleware(&cfg.RateLimit, redisClient, logger),
		ErrorLogger: NewErrorLoggerMiddleware(logger),
		RedisClient: redisClient,
		Config:      cfg,
		Logger:      logger,
	}
}

// Ready reports whether the middleware dependencies are reachable
func (m *Manager) Ready(ctx context.Context) error {
	if m.RedisClient == nil {
		return nil
	}
	return RedisHealthCheck(m.RedisClient, m.Logger)(ctx)
}

// Close closes all middleware resources
func (m *Manager) Close() error {
	if m.RedisClient != nil {
		return m.RedisClient.Close()
	}
	return nil
}
