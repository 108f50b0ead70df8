package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything with health connectivity to verify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	storeDriver string
	workers     int
	dedup       Pinger // nil when the filter is not configured
}

// NewHealthHandler wires a HealthHandler.
func NewHealthHandler(storeDriver string, workers int, dedup Pinger) *HealthHandler {
	return &HealthHandler{
		storeDriver: storeDriver,
		workers:     workers,
		dedup:       dedup,
	}
}

// Register mounts the routes.
func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/", h.Root)
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
}

// Root answers the service banner.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Mail Classification API is running",
	})
}

// Health is the liveness probe with basic runtime facts.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":        true,
		"store":     h.storeDriver,
		"workers":   h.workers,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready checks optional collaborators.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.dedup != nil {
		if err := h.dedup.Ping(ctx); err != nil {
			checks["dedup"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["dedup"] = "healthy"
		}
	} else {
		checks["dedup"] = "not configured"
	}
	checks["store"] = h.storeDriver

	status := "ready"
	code := fiber.StatusOK
	if !healthy {
		status = "not ready"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
