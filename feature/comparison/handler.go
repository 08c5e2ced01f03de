package comparison

import (
	"table-reconciler/core/logger"
	"table-reconciler/core/reconcile"
	"table-reconciler/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for comparisons.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the comparison routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/projects/:id/comparisons", h.HandleRunComparison)
	app.Get("/projects/:id/comparisons", h.HandleListComparisons)
	app.Get("/comparisons/:id", h.HandleGetComparison)
}

// RunSummary is the response of a comparison run.
type RunSummary struct {
	ID            uint                         `json:"id"`
	Status        reconcile.RunStatus          `json:"status"`
	Total         int                          `json:"total_differences"`
	KeyStrategy   reconcile.KeyStrategy        `json:"key_strategy,omitempty"`
	KeyWarning    string                       `json:"key_warning,omitempty"`
	Counts        map[reconcile.ChangeType]int `json:"counts,omitempty"`
	Metadata      map[string]any               `json:"metadata"`
	ArchiveObject string                       `json:"archive_object,omitempty"`
	Error         string                       `json:"error,omitempty"`
}

func summarize(o *Outcome) RunSummary {
	summary := RunSummary{
		ID:            o.Run.ID,
		Status:        o.Run.Status,
		Total:         o.Run.Total,
		KeyStrategy:   o.Keys.Strategy,
		Counts:        o.Counts,
		Metadata:      o.Run.Metadata,
		ArchiveObject: o.ArchiveObject,
	}
	if o.Keys.Warning != nil {
		summary.KeyWarning = o.Keys.Warning.Error()
	}
	return summary
}

// HandleRunComparison runs a project comparison.
// @Summary Run Comparison
// @Description Compares the source and target tables of a project. The optional body overrides the stored tables, keys, key mappings and ignored columns for this run.
// @Tags comparisons
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param overrides body Overrides false "Run overrides"
// @Success 200 {object} RunSummary "Run Summary"
// @Failure 400 {object} map[string]string "Invalid Configuration"
// @Failure 404 {object} map[string]string "Project Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /projects/{id}/comparisons [post]
func (h *Handler) HandleRunComparison(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project id"})
	}

	var overrides Overrides
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&overrides); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	l.Info("Running comparison", zap.Int("project_id", id))
	outcome, err := h.service.RunProject(c.UserContext(), uint(id), overrides)
	if err != nil {
		l.Error("Comparison failed", zap.Int("project_id", id), zap.Error(err))
		if outcome == nil {
			return server.Error(c, err)
		}
		summary := summarize(outcome)
		summary.Error = err.Error()
		return c.Status(server.StatusFor(err)).JSON(summary)
	}

	return c.JSON(summarize(outcome))
}

// HandleGetComparison returns a stored comparison with its results.
// @Summary Get Comparison
// @Description Returns a stored comparison run and all of its differences.
// @Tags comparisons
// @Produce json
// @Param id path int true "Comparison ID"
// @Success 200 {object} store.ComparisonRun "Comparison"
// @Failure 404 {object} map[string]string "Comparison Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /comparisons/{id} [get]
func (h *Handler) HandleGetComparison(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid comparison id"})
	}

	run, err := h.service.Store().GetComparison(c.UserContext(), uint(id))
	if err != nil {
		return server.Error(c, err)
	}
	return c.JSON(run)
}

// HandleListComparisons lists the latest comparisons of a project.
// @Summary List Comparisons
// @Description Returns the latest comparison runs of a project without their results, newest first.
// @Tags comparisons
// @Produce json
// @Param id path int true "Project ID"
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} store.ComparisonRun "Comparisons"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /projects/{id}/comparisons [get]
func (h *Handler) HandleListComparisons(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid project id"})
	}

	runs, err := h.service.Store().ListComparisons(c.UserContext(), uint(id), c.QueryInt("limit", 20))
	if err != nil {
		return server.Error(c, err)
	}
	return c.JSON(runs)
}
