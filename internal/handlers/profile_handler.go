package handlers

import (
	"github.com/gofiber/fiber/v2"

	"careerpilot/backend/internal/models"
	"careerpilot/backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
	storage  services.StorageService
}

func NewProfileHandler(profiles services.ProfileService, storage services.StorageService) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		storage:  storage,
	}
}

// HandleGet handles GET /api/profile/:user_id
func (h *ProfileHandler) HandleGet(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// HandleSave handles POST /api/profile/:user_id. The path user wins over any
// user_id in the body.
func (h *ProfileHandler) HandleSave(c *fiber.Ctx) error {
	var profile models.MasterResume
	if err := c.BodyParser(&profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	saved, err := h.profiles.Save(c.UserContext(), c.Params("user_id"), &profile)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

// HandleParseResume handles POST /api/resume/parse. The upload is read into
// memory, parsed and returned; nothing is stored.
func (h *ProfileHandler) HandleParseResume(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Please upload a PDF, DOCX or text resume as 'file'.",
		})
	}

	upload, err := h.storage.ReadUpload(file)
	if err != nil {
		return respondError(c, err)
	}

	resume, err := h.profiles.ParseResume(c.UserContext(), upload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resume)
}
