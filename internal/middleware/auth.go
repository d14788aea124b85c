package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

const usernameKey = "username"

// Authenticator resolves an Authorization header to a username.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (string, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
	logger        *logrus.Logger
}

func NewAuthMiddleware(authenticator Authenticator, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// Authenticate requires a valid bearer session token
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, err := a.authenticator.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.Path(),
				"request_id": RequestID(c),
			}).Debug("Authentication failed")
			return RespondError(c, err)
		}

		c.Locals(usernameKey, username)
		return c.Next()
	}
}

// RequireOwner rejects requests whose route parameter names a different user
// than the authenticated one.
func (a *AuthMiddleware) RequireOwner(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := GetUsername(c)
		if username == "" || c.Params(param) != username {
			a.logger.WithFields(logrus.Fields{
				"username": username,
				"target":   c.Params(param),
				"path":     c.Path(),
			}).Warn("Access to another user's resources denied")
			return RespondError(c, apperrors.Forbidden("Access denied"))
		}
		return c.Next()
	}
}

// GetUsername returns the authenticated username, or "" before Authenticate ran.
func GetUsername(c *fiber.Ctx) string {
	if username, ok := c.Locals(usernameKey).(string); ok {
		return username
	}
	return ""
}
