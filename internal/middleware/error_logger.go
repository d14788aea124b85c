package middleware

import (
	"time"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const maxLoggedBody = 500

// credentialPaths carry passwords or admin keys in their bodies
var credentialPaths = []string{"/login", "/register", "/password", "/admin/"}

type ErrorLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewErrorLoggerMiddleware(logger *logrus.Logger) *ErrorLoggerMiddleware {
	return &ErrorLoggerMiddleware{
		logger: logger,
	}
}

// Handle logs 4xx and 5xx responses with request context
func (e *ErrorLoggerMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCode < 400 {
			return err
		}

		logFields := logrus.Fields{
			"status_code":   statusCode,
			"method":        c.Method(),
			"path":          c.Path(),
			"ip":            c.IP(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"request_id":    RequestID(c),
			"duration_ms":   time.Since(startTime).Milliseconds(),
			"response_size": len(c.Response().Body()),
		}

		if username := GetUsername(c); username != "" {
			logFields["username"] = username
		}
		if idempotencyKey := c.Get(idempotencyHeader); idempotencyKey != "" {
			logFields["idempotency_key"] = idempotencyKey
		}
		if len(c.Request().URI().QueryString()) > 0 {
			logFields["query"] = string(c.Request().URI().QueryString())
		}

		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
			if utils.ContainsAny(c.Path(), credentialPaths) {
				logFields["request_body"] = "[REDACTED]"
			} else if body := c.Body(); len(body) > 0 {
				logFields["request_body"] = utils.Truncate(string(body), maxLoggedBody)
			}
		}

		if responseBody := c.Response().Body(); len(responseBody) > 0 {
			logFields["response_body"] = utils.Truncate(string(responseBody), maxLoggedBody)
		}

		logEntry := e.logger.WithFields(logFields)
		if statusCode >= 500 {
			if err != nil {
				logEntry = logEntry.WithError(err)
			}
			logEntry.Error("Server error response")
		} else {
			logEntry.Warn("Client error response")
		}

		return err
	}
}
