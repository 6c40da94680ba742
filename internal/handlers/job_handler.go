package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{
		jobs: jobs,
	}
}

// HandleCreate handles POST /api/jobs
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.JobApplication
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	job, err := h.jobs.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(job)
}

// HandleList handles GET /api/jobs/:user_id
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	jobs, err := h.jobs.List(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	if jobs == nil {
		jobs = []models.JobApplication{}
	}
	return c.JSON(jobs)
}

// HandleUpdate handles PUT and PATCH /api/jobs/:user_id/:job_id. Only the
// fields of models.JobUpdate are read from the body.
func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	var update models.JobUpdate
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&update); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
	}

	ack, err := h.jobs.Update(c.UserContext(), c.Params("user_id"), c.Params("job_id"), update)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ack)
}

// HandleDelete handles DELETE /api/jobs/:user_id/:job_id
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	ack, err := h.jobs.Delete(c.UserContext(), c.Params("user_id"), c.Params("job_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ack)
}
