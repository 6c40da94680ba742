package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careerpilot/backend/internal/services"
)

type AnalysisHandler struct {
	pipeline services.Pipeline
}

func NewAnalysisHandler(pipeline services.Pipeline) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline: pipeline,
	}
}

// HandleAnalyze handles POST /api/analyze/:user_id/:job_id. A job without a
// usable description answers 200 with status "error".
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	resp, err := h.pipeline.AnalyzeJob(c.UserContext(), c.Params("user_id"), c.Params("job_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// HandleStrategy handles POST /api/strategy/:user_id/:job_id
func (h *AnalysisHandler) HandleStrategy(c *fiber.Ctx) error {
	strategy, err := h.pipeline.GenerateStrategy(c.UserContext(), c.Params("user_id"), c.Params("job_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(strategy)
}
