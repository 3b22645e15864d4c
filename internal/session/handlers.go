package session

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		sessions, err := svc.Sessions(c.Context(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sessions)
	})

	r.Get("/active", func(c *fiber.Ctx) error {
		sess, err := svc.ActiveSession(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if sess == nil {
			return fiber.NewError(fiber.StatusNotFound, "no active session")
		}
		return c.JSON(sess)
	})

	r.Get("/:id/samples", func(c *fiber.Ctx) error {
		samples, err := svc.Samples(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(samples)
	})
}
