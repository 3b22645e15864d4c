package tracker

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type startSessionRequest struct {
	LocationID string `json:"location_id"`
}

func RegisterRoutes(r fiber.Router, coord *Coordinator, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		if err := coord.StartTracking(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(coord.Status())
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		coord.StopTracking()
		return c.JSON(coord.Status())
	})

	r.Post("/refresh", authMiddleware, func(c *fiber.Ctx) error {
		if err := coord.RefreshMonitoredLocations(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(coord.Status())
	})

	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		var req startSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.LocationID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location_id required")
		}
		sess, err := coord.StartSession(c.Context(), req.LocationID)
		if err != nil {
			if errors.Is(err, ErrSessionActive) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	})

	r.Post("/sessions/end", authMiddleware, func(c *fiber.Ctx) error {
		if err := coord.EndActiveSession(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/prune", authMiddleware, func(c *fiber.Ctx) error {
		n, err := coord.PruneOldSamples(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"deleted": n})
	})
}
