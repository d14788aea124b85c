package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/middleware"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/tasks"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// ImageHandler issues pre-signed URLs for task images
type ImageHandler struct {
	tasks  *tasks.Service
	logger *logrus.Logger
}

func NewImageHandler(taskService *tasks.Service, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{
		tasks:  taskService,
		logger: logger,
	}
}

// List returns download URLs for every image of the user
// @Summary List images
// @Tags Images
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Success 200 {array} models.ImageLink
// @Success 204 "No images"
// @Failure 418 {object} errors.ErrorResponse "Unmapped store error"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /images/{user} [get]
func (h *ImageHandler) List(c *fiber.Ctx) error {
	links, err := h.tasks.DownloadURLs(c.UserContext(), middleware.GetUsername(c))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	if len(links) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(links)
}

// Upload returns a pre-signed PUT URL
// @Summary Image upload URL
// @Description Returns a URL valid for a short time to PUT "<user>/<fileName>" directly to the bucket
// @Tags Images
// @Accept json
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param request body models.UploadImageRequest true "Object name"
// @Success 200 {object} models.PresignedURL
// @Failure 400 {object} errors.ErrorResponse "Invalid file name"
// @Router /images/{user} [post]
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	var req models.UploadImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.FileName == nil {
		return middleware.RespondError(c, apperrors.Validation("fileName is required"))
	}

	url, err := h.tasks.UploadURL(c.UserContext(), middleware.GetUsername(c), *req.FileName)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(url)
}

// Delete removes every image of a task
// @Summary Delete task images
// @Tags Images
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param taskId path string true "Task ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Success 204 "Nothing to delete"
// @Failure 418 {object} errors.ErrorResponse "Unmapped store error"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /images/{user}/{taskId} [delete]
func (h *ImageHandler) Delete(c *fiber.Ctx) error {
	username := middleware.GetUsername(c)
	taskID := c.Params("taskId")

	removed, err := h.tasks.DeleteImages(c.UserContext(), username, taskID)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	if removed == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}

	h.logger.WithFields(logrus.Fields{
		"username": username,
		"todo_id":  taskID,
		"removed":  removed,
	}).Info("Task images deleted")
	return c.JSON(fiber.Map{"message": "Images deleted", "deleted": removed})
}
