package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/auth"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/middleware"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// AuthHandler handles registration, login and password changes
type AuthHandler struct {
	auth   *auth.Service
	logger *logrus.Logger
}

func NewAuthHandler(authService *auth.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

// Register creates a new user
// @Summary User registration
// @Description Create a new user account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "Created"
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 409 {object} errors.ErrorResponse "User exists"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.Username == nil || req.Password == nil {
		return middleware.RespondError(c, apperrors.Validation("Username and password are required"))
	}

	if err := h.auth.Register(c.UserContext(), *req.Username, *req.Password, models.NewUserOptions{Email: req.Email}); err != nil {
		return middleware.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "User created",
		"username": *req.Username,
	})
}

// Login exchanges Basic Auth credentials for a session token
// @Summary User login
// @Description Authenticate with HTTP Basic Auth and receive a bearer session token. Logging in again invalidates the previous token.
// @Tags Auth
// @Produce json
// @Security BasicAuth
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} errors.ErrorResponse "Malformed Authorization header"
// @Failure 403 {object} errors.ErrorResponse "Invalid credentials"
// @Failure 404 {object} errors.ErrorResponse "Unknown user"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, err := h.auth.Login(c.UserContext(), header)
	if err != nil {
		return middleware.RespondError(c, err)
	}

	// Parsing already succeeded inside Login
	username, _, _ := auth.ParseBasicAuth(header)
	return c.JSON(models.LoginResponse{
		Token:    token,
		Username: username,
	})
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Description Replace the password after verifying the old one
// @Tags Auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param request body models.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} map[string]interface{} "Changed"
// @Success 204 "No such user"
// @Failure 403 {object} errors.ErrorResponse "Old password does not match"
// @Failure 409 {object} errors.ErrorResponse "Concurrent change"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /users/{user}/password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	err := h.auth.ChangePassword(c.UserContext(), middleware.GetUsername(c), req.OldPassword, req.NewPassword)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return middleware.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password changed"})
}
