package schedule

import (
	"table-reconciler/core/logger"
	"table-reconciler/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for scheduled tasks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the schedule routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/schedules")
	group.Get("/", h.HandleListTasks)
	group.Post("/reload", h.HandleReload)
	group.Post("/:id/run", h.HandleRunTask)
}

// HandleListTasks lists the enabled scheduled tasks.
// @Summary List Scheduled Tasks
// @Description Returns the enabled scheduled tasks with their counters and next run.
// @Tags schedules
// @Produce json
// @Success 200 {array} store.ScheduledTask "Scheduled Tasks"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schedules [get]
func (h *Handler) HandleListTasks(c *fiber.Ctx) error {
	tasks, err := h.service.store.ListScheduledTasks(c.UserContext())
	if err != nil {
		return server.Error(c, err)
	}
	return c.JSON(tasks)
}

// HandleReload reloads the scheduled tasks from the store.
// @Summary Reload Schedules
// @Description Replaces every active schedule with the enabled tasks of the store.
// @Tags schedules
// @Produce json
// @Success 200 {object} LoadResult "Reload Result"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schedules/reload [post]
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.Load(c.UserContext())
	if err != nil {
		l.Error("Failed to reload schedules", zap.Error(err))
		return server.Error(c, err)
	}
	return c.JSON(result)
}

// HandleRunTask runs a scheduled task immediately.
// @Summary Run Scheduled Task
// @Description Runs the comparison of a scheduled task now and records it on the task.
// @Tags schedules
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} map[string]interface{} "Run Result"
// @Failure 404 {object} map[string]string "Task Not Found"
// @Failure 409 {object} map[string]string "Task Already Running Or Disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /schedules/{id}/run [post]
func (h *Handler) HandleRunTask(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task id"})
	}

	outcome, err := h.service.Trigger(c.UserContext(), uint(id))
	if IsAlreadyRunning(err) || IsDisabled(err) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Scheduled task failed", zap.Int("task_id", id), zap.Error(err))
		if outcome == nil {
			return server.Error(c, err)
		}
		return c.Status(server.StatusFor(err)).JSON(fiber.Map{
			"id":     outcome.Run.ID,
			"status": outcome.Run.Status,
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"id":                outcome.Run.ID,
		"status":            outcome.Run.Status,
		"total_differences": outcome.Run.Total,
	})
}
