package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/middleware"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/tasks"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// TaskHandler handles task CRUD
type TaskHandler struct {
	tasks  *tasks.Service
	logger *logrus.Logger
}

func NewTaskHandler(taskService *tasks.Service, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  taskService,
		logger: logger,
	}
}

// List returns the user's tasks
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Success 200 {array} models.Task
// @Success 204 "No tasks"
// @Failure 403 {object} errors.ErrorResponse "Not the owner"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /tasks/{user} [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	list, err := h.tasks.List(c.UserContext(), middleware.GetUsername(c))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	if len(list) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(list)
}

// Create stores a task and optionally returns an image upload URL
// @Summary Create task
// @Description Create or replace a task. With fileName set, the response carries a pre-signed upload URL for "<user>/<todo_id>/<fileName>".
// @Tags Tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param Idempotency-Key header string false "UUID replay key"
// @Param request body models.CreateTaskRequest true "Task"
// @Success 201 {object} models.CreateTaskResponse
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /tasks/{user} [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.TodoID == nil || req.Title == nil || req.IsDone == nil {
		return middleware.RespondError(c, apperrors.Validation("todo_id, title and isDone are required"))
	}

	in := tasks.CreateTaskInput{
		TodoID:   *req.TodoID,
		Title:    *req.Title,
		IsDone:   *req.IsDone,
		FileName: req.FileName,
	}

	created, err := h.tasks.Create(c.UserContext(), middleware.GetUsername(c), in)
	if err != nil {
		return middleware.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.CreateTaskResponse{
		Task:      created.Task,
		UploadURL: created.UploadURL,
		ImageKey:  created.ImageKey,
	})
}

// UpdateTitle edits a task title
// @Summary Update task title
// @Tags Tasks
// @Accept json
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param taskId path string true "Task ID"
// @Param request body models.UpdateTitleRequest true "New title"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 400 {object} errors.ErrorResponse "Invalid request"
// @Failure 404 {object} errors.ErrorResponse "No such task"
// @Failure 500 {object} errors.ErrorResponse "Internal error"
// @Router /tasks/{user}/{taskId} [put]
func (h *TaskHandler) UpdateTitle(c *fiber.Ctx) error {
	var req models.UpdateTitleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if req.Title == nil {
		return middleware.RespondError(c, apperrors.Validation("title is required"))
	}

	if err := h.tasks.UpdateTitle(c.UserContext(), middleware.GetUsername(c), c.Params("taskId"), *req.Title); err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task updated"})
}

// MarkDone sets isDone
// @Summary Mark task done
// @Tags Tasks
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param taskId path string true "Task ID"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 404 {object} errors.ErrorResponse "No such task"
// @Router /tasks/{user}/{taskId}/done [patch]
func (h *TaskHandler) MarkDone(c *fiber.Ctx) error {
	return h.setDone(c, true)
}

// MarkUndone clears isDone
// @Summary Mark task not done
// @Tags Tasks
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param taskId path string true "Task ID"
// @Success 200 {object} map[string]interface{} "Updated"
// @Failure 404 {object} errors.ErrorResponse "No such task"
// @Router /tasks/{user}/{taskId}/undone [patch]
func (h *TaskHandler) MarkUndone(c *fiber.Ctx) error {
	return h.setDone(c, false)
}

func (h *TaskHandler) setDone(c *fiber.Ctx, done bool) error {
	if err := h.tasks.SetDone(c.UserContext(), middleware.GetUsername(c), c.Params("taskId"), done); err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task updated", "isDone": done})
}

// Delete removes a task and its images
// @Summary Delete task
// @Description Remove the task record, then every image under "<user>/<taskId>/". CLEANUP_INCOMPLETE means the record is gone but images remain.
// @Tags Tasks
// @Produce json
// @Security Bearer
// @Param user path string true "Username"
// @Param taskId path string true "Task ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 500 {object} errors.ErrorResponse "Internal error or cleanup incomplete"
// @Router /tasks/{user}/{taskId} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	if err := h.tasks.Delete(c.UserContext(), middleware.GetUsername(c), c.Params("taskId")); err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}
