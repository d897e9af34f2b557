package handler

import (
	"context"
	"strings"

	"go-warehouse/internal/apperror"
	"go-warehouse/internal/worker"

	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	runner *worker.Runner
}

func NewTaskHandler(r *worker.Runner) *TaskHandler {
	return &TaskHandler{runner: r}
}

type taskRequest struct {
	Kind worker.Kind `json:"kind"`
	Path string      `json:"path"`
}

// SubmitTask starts an import or export in the background. Progress is
// pushed over /ws; the caller can also poll GET /tasks/current.
func (h *TaskHandler) SubmitTask(c *fiber.Ctx) error {
	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return respondError(c, &apperror.ValidationError{Field: "path", Message: "is required"})
	}
	task, err := worker.NewTask(req.Kind, path)
	if err != nil {
		return respondError(c, &apperror.ValidationError{Field: "kind", Message: err.Error()})
	}

	handle, err := h.runner.Submit(context.Background(), task)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Task accepted", "data": handle.Snapshot()})
}

func (h *TaskHandler) GetCurrentTask(c *fiber.Ctx) error {
	handle := h.runner.Current()
	if handle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No task has been submitted"})
	}
	return c.JSON(fiber.Map{"busy": h.runner.Busy(), "data": handle.Snapshot()})
}
