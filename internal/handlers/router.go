package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careerpilot/backend/internal/models"
)

const Version = "1.0.0"

// NewApp creates the fiber app for this API. Immutable is forced: params and
// bodies outlive the request once they reach a store.
func NewApp(cfg fiber.Config) *fiber.App {
	cfg.Immutable = true
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = ErrorHandler
	}
	return fiber.New(cfg)
}

// Register mounts every route on app.
func Register(app *fiber.App, jobs *JobHandler, analysis *AnalysisHandler, profiles *ProfileHandler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(models.StatusResponse{
			Status:  "CareerPilot ADK Backend is running",
			System:  "CareerPilot Agentic Core",
			Version: Version,
		})
	})

	api := app.Group("/api")

	api.Get("/agent/status", func(c *fiber.Ctx) error {
		return c.JSON(models.AgentStatusResponse{
			Agent:  "RecruiterAgent",
			Status: "IDLE",
		})
	})

	api.Post("/jobs", jobs.HandleCreate)
	api.Get("/jobs/:user_id", jobs.HandleList)
	api.Put("/jobs/:user_id/:job_id", jobs.HandleUpdate)
	api.Patch("/jobs/:user_id/:job_id", jobs.HandleUpdate)
	api.Delete("/jobs/:user_id/:job_id", jobs.HandleDelete)

	api.Post("/analyze/:user_id/:job_id", analysis.HandleAnalyze)
	api.Post("/strategy/:user_id/:job_id", analysis.HandleStrategy)

	api.Get("/profile/:user_id", profiles.HandleGet)
	api.Post("/profile/:user_id", profiles.HandleSave)
	api.Post("/resume/parse", profiles.HandleParseResume)
}
