package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"careerpilot/backend/internal/schemas"
	"careerpilot/backend/internal/services"
)

// HTTPStatus maps a service error onto the status code returned to the
// client. Anything unrecognized is a 500.
func HTTPStatus(err error) int {
	var (
		notFound     *services.NotFoundError
		precondition *services.PreconditionError
		request      *services.RequestError
		extraction   *services.ExtractionError
		validation   *schemas.ValidationError
		fiberErr     *fiber.Error
	)

	switch {
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &precondition), errors.As(err, &request):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrUnsupportedDocument),
		errors.Is(err, services.ErrEmptyDocument):
		return fiber.StatusBadRequest
	case errors.As(err, &extraction), errors.As(err, &validation):
		return fiber.StatusInternalServerError
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": message} with the mapped status.
func respondError(c *fiber.Ctx, err error) error {
	code := HTTPStatus(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("❌ %s %s failed: %v\n", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// ErrorHandler renders errors that escape a handler as {"error","code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := HTTPStatus(err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
