package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"tasky/internal/schema/adapter/persistence/mongodb"
	"tasky/internal/schema/domain/model"
	"tasky/internal/schema/domain/repository"
	"tasky/internal/schema/usecase"
	"tasky/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// TokenValidator verifies admin bearer tokens
type TokenValidator interface {
	Validate(token string) (string, error)
}

// SchemaHTTPHandler exposes the declared collections and an on-demand bootstrap
type SchemaHTTPHandler struct {
	usecase usecase.SchemaUsecaseInterface
	specs   []model.CollectionSpec
	timeout time.Duration
}

// NewSchemaHTTPHandler creates the handler. timeout bounds one bootstrap request.
func NewSchemaHTTPHandler(uc usecase.SchemaUsecaseInterface, specs []model.CollectionSpec, timeout time.Duration) *SchemaHTTPHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SchemaHTTPHandler{usecase: uc, specs: specs, timeout: timeout}
}

// RegisterRoutes mounts the admin routes on router behind the token guard
func (h *SchemaHTTPHandler) RegisterRoutes(router fiber.Router, tokens TokenValidator) {
	admin := router.Group("/admin", AdminGuard(tokens))
	admin.Get("/schema", h.ListSchema)
	admin.Get("/schema/plan", h.Plan)
	admin.Post("/schema/bootstrap", h.Bootstrap)
}

// ListSchema returns each declared collection with the validator bootstrap
// installs for it, rendered as relaxed Extended JSON.
func (h *SchemaHTTPHandler) ListSchema(c *fiber.Ctx) error {
	collections := make(bson.A, 0, len(h.specs))
	for _, spec := range h.specs {
		rule := spec.Rule()
		required := rule.RequiredFields()
		if required == nil {
			required = []string{}
		}
		collections = append(collections, bson.D{
			{Key: "name", Value: spec.Name},
			{Key: "required", Value: required},
			{Key: "validator", Value: mongodb.Validator(rule)},
		})
	}

	out, err := bson.MarshalExtJSON(bson.D{
		{Key: "collections", Value: collections},
		{Key: "count", Value: len(collections)},
	}, false, false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render validators"})
	}
	c.Type("json")
	return c.Send(out)
}

// Plan reports what a bootstrap would do without changing anything
func (h *SchemaHTTPHandler) Plan(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.usecase.Plan(ctx, h.specs)
	return h.respond(c, report, err)
}

// Bootstrap runs EnsureCollections over the declared specs
func (h *SchemaHTTPHandler) Bootstrap(c *fiber.Ctx) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.usecase.EnsureCollections(ctx, h.specs)
	return h.respond(c, report, err)
}

func (h *SchemaHTTPHandler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	ctx := utils.WithOperation(c.UserContext(), "schema-"+strings.TrimPrefix(c.Path(), "/"))
	return context.WithTimeout(ctx, h.timeout)
}

func (h *SchemaHTTPHandler) respond(c *fiber.Ctx, report *model.Report, err error) error {
	if report == nil {
		var dup *model.DuplicateSpecError
		var invalid *model.InvalidSpecError
		switch {
		case errors.As(err, &dup), errors.As(err, &invalid):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrLockHeld):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			msg := "schema bootstrap failed"
			if err != nil {
				msg = err.Error()
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
		}
	}

	status := fiber.StatusOK
	if !report.OK() {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(fiber.Map{
		"ok":      report.OK(),
		"dryRun":  report.DryRun,
		"results": report.Results,
	})
}
