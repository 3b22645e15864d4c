package geofence

import (
	"time"

	"backend-presence/internal/tracker"

	"github.com/gofiber/fiber/v2"
)

// AuthorizationReceiver accepts device-reported authorization changes.
// Satisfied by *tracker.Router.
type AuthorizationReceiver interface {
	OnAuthorizationChange(status tracker.AuthorizationStatus)
}

type fixRequest struct {
	Lat               float64   `json:"lat"`
	Lng               float64   `json:"lng"`
	RecordedAt        time.Time `json:"recorded_at"`
	AccuracyM         float64   `json:"accuracy_m"`
	AltitudeM         float64   `json:"altitude_m"`
	VerticalAccuracyM *float64  `json:"vertical_accuracy_m"`
	SpeedMps          *float64  `json:"speed_mps"`
	CourseDeg         *float64  `json:"course_deg"`
}

type authorizationRequest struct {
	Status string `json:"status"`
}

func RegisterRoutes(r fiber.Router, ev *Evaluator, auth AuthorizationReceiver, authMiddleware fiber.Handler) {
	r.Post("/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var req fixRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.RecordedAt.IsZero() {
			req.RecordedAt = time.Now()
		}

		fix := tracker.Fix{
			Lat:               req.Lat,
			Lng:               req.Lng,
			Timestamp:         req.RecordedAt,
			AccuracyM:         req.AccuracyM,
			AltitudeM:         req.AltitudeM,
			VerticalAccuracyM: optionalOrSentinel(req.VerticalAccuracyM),
			SpeedMps:          optionalOrSentinel(req.SpeedMps),
			CourseDeg:         optionalOrSentinel(req.CourseDeg),
		}
		ev.Observe(c.Context(), fix)
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/authorization", authMiddleware, func(c *fiber.Ctx) error {
		var req authorizationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		switch status := tracker.AuthorizationStatus(req.Status); status {
		case tracker.AuthorizationAuthorized, tracker.AuthorizationDenied, tracker.AuthorizationNotDetermined:
			auth.OnAuthorizationChange(status)
			return c.SendStatus(fiber.StatusNoContent)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown authorization status")
		}
	})
}

// optionalOrSentinel maps an absent optional field to the provider's
// negative "unknown" sentinel.
func optionalOrSentinel(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}
