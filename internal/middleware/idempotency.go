package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/utils"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const idempotencyHeader = "Idempotency-Key"

var naturallyIdempotent = []string{
	fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions,
	fiber.MethodPut, fiber.MethodDelete,
}

// cacheableHeaders are replayed with a cached response
var cacheableHeaders = []string{"content-type", "location"}

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key. The header is optional; requests without it pass through.
type IdempotencyMiddleware struct {
	redisClient redis.UniversalClient
	logger      *logrus.Logger
	ttl         time.Duration
}

type IdempotencyRecord struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewIdempotencyMiddleware returns a pass-through middleware when redisClient is nil.
func NewIdempotencyMiddleware(redisClient redis.UniversalClient, ttl time.Duration, logger *logrus.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		redisClient: redisClient,
		logger:      logger,
		ttl:         ttl,
	}
}

// Handle checks the key, replays a stored response or captures a new one.
func (i *IdempotencyMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if i.redisClient == nil || utils.ContainsString(naturallyIdempotent, c.Method()) {
			return c.Next()
		}

		idempotencyKey := c.Get(idempotencyHeader)
		if idempotencyKey == "" {
			return c.Next()
		}
		if _, err := uuid.Parse(idempotencyKey); err != nil {
			return RespondError(c, apperrors.NewAppError(apperrors.CodeIdempotencyInvalid, "Idempotency-Key must be a valid UUID", err))
		}

		ctx := c.UserContext()
		// Keys are scoped per user so one user cannot replay another's response
		redisKey := fmt.Sprintf("idempotency:%s:%s", GetUsername(c), idempotencyKey)
		fingerprint := i.generateFingerprint(c)

		record, err := i.getIdempotencyRecord(ctx, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			// Continue with the request rather than failing it
			i.logger.WithError(err).Error("Failed to get idempotency record")
		}

		if record != nil {
			existingFingerprint, err := i.redisClient.Get(ctx, redisKey+":fingerprint").Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				i.logger.WithError(err).Error("Failed to get fingerprint")
			}
			if existingFingerprint != "" && existingFingerprint != fingerprint {
				metrics.RecordIdempotencyHit("conflict")
				return RespondError(c, apperrors.NewAppError(apperrors.CodeIdempotencyClash,
					"Request differs from original request with same Idempotency-Key", nil))
			}

			metrics.RecordIdempotencyHit("replay")
			return i.returnCachedResponse(c, record)
		}

		if err := i.redisClient.Set(ctx, redisKey+":fingerprint", fingerprint, i.ttl).Err(); err != nil {
			i.logger.WithError(err).Error("Failed to store fingerprint")
		}

		metrics.RecordIdempotencyHit("miss")
		err = c.Next()
		i.capture(c, redisKey)
		return err
	}
}

// capture stores 2xx responses only, so failed requests can be retried.
func (i *IdempotencyMiddleware) capture(c *fiber.Ctx, redisKey string) {
	statusCode := c.Response().StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		return
	}

	record := IdempotencyRecord{
		StatusCode: statusCode,
		Headers:    make(map[string]string),
		Body:       string(c.Response().Body()),
		CreatedAt:  time.Now().UTC(),
	}
	c.Response().Header.VisitAll(func(key, value []byte) {
		if utils.ContainsString(cacheableHeaders, strings.ToLower(string(key))) {
			record.Headers[string(key)] = string(value)
		}
	})

	if err := i.storeIdempotencyRecord(c.UserContext(), redisKey, &record); err != nil {
		i.logger.WithError(err).WithField("redis_key", redisKey).Error("Failed to store idempotency record")
		return
	}
	i.logger.WithFields(logrus.Fields{
		"redis_key":   redisKey,
		"status_code": statusCode,
	}).Debug("Stored idempotency record")
}

// generateFingerprint hashes what makes two requests the same request
func (i *IdempotencyMiddleware) generateFingerprint(c *fiber.Ctx) string {
	h := sha256.New()
	h.Write([]byte(c.Method()))
	h.Write([]byte(":"))
	h.Write([]byte(c.Path()))
	h.Write([]byte(":"))
	h.Write(c.Request().URI().QueryString())
	h.Write([]byte(":"))
	h.Write(c.Body())
	return hex.EncodeToString(h.Sum(nil))
}

func (i *IdempotencyMiddleware) getIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error) {
	data, err := i.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	return &record, nil
}

func (i *IdempotencyMiddleware) storeIdempotencyRecord(ctx context.Context, key string, record *IdempotencyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	return i.redisClient.Set(ctx, key, data, i.ttl).Err()
}

func (i *IdempotencyMiddleware) returnCachedResponse(c *fiber.Ctx, record *IdempotencyRecord) error {
	for key, value := range record.Headers {
		c.Set(key, value)
	}
	c.Set("X-Idempotency-Cached", "true")
	return c.Status(record.StatusCode).SendString(record.Body)
}
