package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"radarmap/internal/service"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthCheck reports readiness. It fails only when a configured database
// does not answer; radar reachability is informational.
func HealthCheck(db Pinger, svc service.RadarService, radarEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"radar":  radarState(svc, radarEnabled),
		})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

func radarState(svc service.RadarService, enabled bool) string {
	if !enabled {
		return "disabled"
	}
	if svc.Snapshot().Online {
		return "active"
	}
	return "offline"
}
