package server

import (
	"errors"

	"table-reconciler/core/reconcile"
	"table-reconciler/core/store"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a service to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case reconcile.IsClientError(err):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err as a JSON error body with the status chosen by StatusFor.
func Error(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
