package mirror

import (
	"data-mirror/core/logger"
	"data-mirror/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the mirror job.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the mirror routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mirror")
	group.Get("/plan", h.HandlePlan)
	group.Post("/apply", h.HandleApply)
}

// HandlePlan computes and returns the current change set.
// @Summary Plan Mirror
// @Description Compute the change set between source and destination without applying it.
// @Tags mirror
// @Accept json
// @Produce json
// @Success 200 {object} engine.ChangeSet "Change Set"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	changes, err := h.service.Plan(c.Context())
	if err != nil {
		l.Error("Mirror plan failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(changes)
}

// HandleApply computes the change set and applies it.
// @Summary Apply Mirror
// @Description Apply the change set to the destination table. Requires confirm=true unless dry_run=true.
// @Tags mirror
// @Accept json
// @Produce json
// @Param dry_run query bool false "Report only, apply nothing"
// @Param confirm query bool false "Authorize mutations"
// @Success 200 {object} map[string]any "Changes and apply results"
// @Failure 400 {object} map[string]string "Missing confirmation"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/apply [post]
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	opts := ApplyOptions{
		DryRun:    utils.ToBool(c.Query("dry_run")),
		Confirmed: utils.ToBool(c.Query("confirm")),
	}

	if !opts.DryRun && !opts.Confirmed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "apply requires confirm=true or dry_run=true",
		})
	}

	changes, result, err := h.service.Apply(c.Context(), opts)
	if err != nil {
		l.Error("Mirror apply failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"changes": changes,
		"result":  result,
		"dry_run": opts.DryRun,
	})
}
