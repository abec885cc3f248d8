package http

import (
	"context"
	"time"

	"tasky/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by *mongo.Client
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// ProbeHandler serves the health, liveness and readiness endpoints
type ProbeHandler struct {
	db     Pinger
	logger logger.Logger
}

// NewProbeHandler creates a probe handler checking db for readiness
func NewProbeHandler(db Pinger, log logger.Logger) *ProbeHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ProbeHandler{db: db, logger: log.WithComponent("probes")}
}

// RegisterRoutes mounts /health, /healthz and /readyz on router
func (h *ProbeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/healthz", h.Liveness)
	router.Get("/readyz", h.Readiness)
}

// Welcome handles GET /
func Welcome(c *fiber.Ctx) error {
	return c.SendString("Welcome to Tasky API")
}

// Health reports the service status and version
func (h *ProbeHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "UP", "version": Version})
}

// Liveness reports that the process is serving requests
func (h *ProbeHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ALIVE"})
}

// Readiness reports READY once MongoDB answers a ping
func (h *ProbeHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		h.logger.WithContext(ctx).Errorf("MongoDB not reachable: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "DOWN",
			"error":  "MongoDB not connected",
		})
	}
	return c.JSON(fiber.Map{"status": "READY"})
}
