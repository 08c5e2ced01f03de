package consistency

import (
	"table-reconciler/core/logger"
	"table-reconciler/core/reconcile"
	"table-reconciler/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for consistency checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the consistency routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/consistency")
	group.Get("/checks/:id", h.HandleGetCheck)
	group.Post("/:id/checks", h.HandleRunCheck)
}

// CheckSummary is the response of a consistency check run.
type CheckSummary struct {
	ID            uint                                `json:"id"`
	Status        reconcile.RunStatus                 `json:"status"`
	Total         int                                 `json:"total_inconsistencies"`
	MatchedRows   int                                 `json:"matched_rows"`
	Counts        map[reconcile.InconsistencyType]int `json:"counts,omitempty"`
	Metadata      map[string]any                      `json:"metadata"`
	ArchiveObject string                              `json:"archive_object,omitempty"`
	Error         string                              `json:"error,omitempty"`
}

func summarize(o *Outcome) CheckSummary {
	return CheckSummary{
		ID:            o.Run.ID,
		Status:        o.Run.Status,
		Total:         o.Run.Total,
		MatchedRows:   o.MatchedRows,
		Counts:        o.Counts,
		Metadata:      o.Run.Metadata,
		ArchiveObject: o.ArchiveObject,
	}
}

// HandleRunCheck runs a stored consistency config.
// @Summary Run Consistency Check
// @Description Joins the source and target tables of a consistency config and compares the configured field pairs.
// @Tags consistency
// @Produce json
// @Param id path int true "Consistency Config ID"
// @Success 200 {object} CheckSummary "Check Summary"
// @Failure 400 {object} map[string]string "Invalid Configuration"
// @Failure 404 {object} map[string]string "Config Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consistency/{id}/checks [post]
func (h *Handler) HandleRunCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid config id"})
	}

	l.Info("Running consistency check", zap.Int("config_id", id))
	outcome, err := h.service.RunConfig(c.UserContext(), uint(id))
	if err != nil {
		l.Error("Consistency check failed", zap.Int("config_id", id), zap.Error(err))
		if outcome == nil {
			return server.Error(c, err)
		}
		summary := summarize(outcome)
		summary.Error = err.Error()
		return c.Status(server.StatusFor(err)).JSON(summary)
	}

	return c.JSON(summarize(outcome))
}

// HandleGetCheck returns a stored consistency check with its results.
// @Summary Get Consistency Check
// @Description Returns a stored consistency check run and all of its inconsistencies.
// @Tags consistency
// @Produce json
// @Param id path int true "Check ID"
// @Success 200 {object} store.ConsistencyCheck "Consistency Check"
// @Failure 404 {object} map[string]string "Check Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /consistency/checks/{id} [get]
func (h *Handler) HandleGetCheck(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid check id"})
	}

	check, err := h.service.store.GetConsistencyCheck(c.UserContext(), uint(id))
	if err != nil {
		return server.Error(c, err)
	}
	return c.JSON(check)
}
