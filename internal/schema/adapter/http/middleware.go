package http

import (
	"strings"

	"tasky/internal/shared/contextkeys"
	sharederrors "tasky/internal/shared/errors"
	"tasky/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminGuard rejects requests without a valid "Authorization: Bearer" token
func AdminGuard(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return unauthorized(c, sharederrors.NewAuthenticationError("Missing bearer token"))
		}

		subject, err := tokens.Validate(token)
		if err != nil {
			return unauthorized(c, sharederrors.NewAuthenticationError("Invalid admin token").WithCause(err))
		}

		c.Locals(contextkeys.AdminSubjectKey, subject)
		c.SetUserContext(utils.WithAdminSubject(c.UserContext(), subject))
		return c.Next()
	}
}

// unauthorized renders an authentication error. The cause stays out of the body.
func unauthorized(c *fiber.Ctx, appErr *sharederrors.AppError) error {
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{
		"error": appErr.Message,
		"type":  appErr.Type,
	})
}
