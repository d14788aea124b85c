package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/auth"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/middleware"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
)

type AdminHandler struct {
	auth   *auth.Service
	logger *logrus.Logger
}

func NewAdminHandler(authService *auth.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		auth:   authService,
		logger: logger,
	}
}

// DeleteUser removes a user account, gated by the shared admin key
// @Summary Delete user
// @Description Remove a user record. Tasks and images are not removed.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.DeleteUserRequest true "Admin key and username"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 403 {object} errors.ErrorResponse "Wrong key"
// @Failure 404 {object} errors.ErrorResponse "No such user"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /admin/delete-user [post]
func (a *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	var req models.DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	if err := a.auth.DeleteUser(c.UserContext(), req.Key, req.Username); err != nil {
		return middleware.RespondError(c, err)
	}

	a.logger.WithFields(logrus.Fields{
		"username":   req.Username,
		"request_id": middleware.RequestID(c),
	}).Info("Admin deleted user")
	return c.JSON(fiber.Map{
		"message":  "User deleted",
		"username": req.Username,
	})
}
