package handler

import (
	"errors"
	"time"

	"tobaku-pos/internal/middleware"
	"tobaku-pos/internal/model"
	"tobaku-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError writes {"error": msg} with the status matching the error kind.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrConcurrencyConflict):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
	}

	msg := err.Error()
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		msg = "Internal Server Error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// actor returns the authenticated user. Protected routes always have one.
func actor(c *fiber.Ctx) model.Actor {
	if a, ok := middleware.ActorFrom(c); ok {
		return a
	}
	return model.Actor{}
}

// Helper untuk parse UUID dari path param
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// parseDate accepts YYYY-MM-DD (local day) or RFC3339. endOfDay moves a bare
// date to the last instant of that day.
func parseDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
