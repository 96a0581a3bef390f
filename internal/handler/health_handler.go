package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports dependency health. The database is required;
// the price cache is optional, the shop serves every price from
// Postgres when Redis is away.
type HealthHandler struct {
	db     Pinger
	prices Pinger
}

// NewHealthHandler creates a HealthHandler. prices may be nil when the
// price cache is disabled.
func NewHealthHandler(db, prices Pinger) *HealthHandler {
	return &HealthHandler{db: db, prices: prices}
}

// Check handles GET /health. An unreachable database is 503; a missing
// or unreachable price cache only degrades the report.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}

	priceCache := "disabled"
	if h.prices != nil {
		priceCache = "ok"
		if err := h.prices.Ping(c.Context()); err != nil {
			log.Warn().Err(err).Msg("price cache unreachable, prices served from the database")
			priceCache = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status":      "healthy",
		"price_cache": priceCache,
	})
}
