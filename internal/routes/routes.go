package routes

import (
	"time"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/auth"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/logging"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/middleware"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/tasks"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"
)

const serviceName = "todo-api"

// Setup configures all API routes
func Setup(app *fiber.App, cfg *config.Config, logger *logrus.Logger, m *middleware.Manager, authService *auth.Service, taskService *tasks.Service) {
	authHandler := NewAuthHandler(authService, logger)
	adminHandler := NewAdminHandler(authService, logger)
	taskHandler := NewTaskHandler(taskService, logger)
	imageHandler := NewImageHandler(taskService, logger)

	// Health check endpoints (no auth required)
	app.Get("/healthz", healthCheck)
	app.Get("/readyz", readinessCheck(m))
	app.Get("/version", versionHandler)

	app.Get(cfg.Observability.MetricsPath, metrics.PrometheusHandler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Use(metrics.HTTPMetricsMiddleware())
	api.Use(m.RateLimit.Handle())

	// Public endpoints
	api.Post("/register", m.RateLimit.Login(), authHandler.Register)
	api.Post("/login", m.RateLimit.Login(), authHandler.Login)
	api.Post("/admin/delete-user", m.RateLimit.Login(), adminHandler.DeleteUser)

	// Every protected route is scoped to the authenticated user's own :user
	owner := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{
			m.Auth.Authenticate(),
			m.Auth.RequireOwner("user"),
			m.Idempotency.Handle(),
			h,
		}
	}

	api.Get("/tasks/:user", owner(taskHandler.List)...)
	api.Post("/tasks/:user", owner(taskHandler.Create)...)
	api.Put("/tasks/:user/:taskId", owner(taskHandler.UpdateTitle)...)
	api.Patch("/tasks/:user/:taskId/done", owner(taskHandler.MarkDone)...)
	api.Patch("/tasks/:user/:taskId/undone", owner(taskHandler.MarkUndone)...)
	api.Delete("/tasks/:user/:taskId", owner(taskHandler.Delete)...)

	api.Get("/images/:user", owner(imageHandler.List)...)
	api.Post("/images/:user", owner(imageHandler.Upload)...)
	api.Delete("/images/:user/:taskId", owner(imageHandler.Delete)...)

	api.Post("/users/:user/password", owner(authHandler.ChangePassword)...)

	app.Use(notFoundHandler)
}

// ErrorHandler renders errors that escape a handler in the standard envelope
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": middleware.RequestID(c),
		}).Error("Request error")

		return middleware.RespondError(c, err)
	}
}

// badRequest wraps a body parsing failure
func badRequest(c *fiber.Ctx, message string, cause error) error {
	return middleware.RespondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, message, cause))
}

// healthCheck returns the health status of the service
// @Summary Health check
// @Description Check if the service is healthy
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /healthz [get]
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   serviceName,
	})
}

// readinessCheck checks if the service is ready to accept traffic
// @Summary Readiness check
// @Description Check if the service is ready to accept traffic
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Ready"
// @Failure 503 {object} map[string]interface{} "Not ready"
// @Router /readyz [get]
func readinessCheck(m *middleware.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := m.Ready(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "not ready",
				"reason":    "redis unavailable",
				"error":     err.Error(),
				"timestamp": time.Now().UTC(),
			})
		}

		return c.JSON(fiber.Map{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	}
}

// versionHandler returns version information
// @Summary Version information
// @Description Get service version and build information
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{} "Version info"
// @Router /version [get]
func versionHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"version": logging.Version(),
		"commit":  commit,
		"built":   buildTime,
	})
}

// Set at build time with -ldflags "-X .../internal/routes.commit=..."
var (
	commit    = "unknown"
	buildTime = "unknown"
)

func notFoundHandler(c *fiber.Ctx) error {
	return middleware.RespondError(c, apperrors.NotFound("The requested resource was not found"))
}
