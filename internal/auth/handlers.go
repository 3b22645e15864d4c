package auth

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/devices", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		device, err := svc.RegisterDevice(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(device)
	})

	r.Post("/pair", func(c *fiber.Ctx) error {
		var req PairRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tokens, err := svc.Pair(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "pairing failed")
		}
		return c.JSON(tokens)
	})
}
