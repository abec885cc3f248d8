package middleware

import (
	"tasky/internal/shared/contextkeys"
	"tasky/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// HeaderRequestID carries the correlation id on requests and responses
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID reuses an incoming X-Request-ID or generates one. fiber's requestid
// middleware echoes it and stores it in Locals; the id is also put on the user
// context so the logrus logger picks it up.
func RequestID() fiber.Handler {
	assign := requestid.New(requestid.Config{
		Header:     HeaderRequestID,
		Generator:  uuid.NewString,
		ContextKey: contextkeys.RequestIDKey,
	})

	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
			c.Request().Header.Set(HeaderRequestID, id)
		}
		c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		return assign(c)
	}
}
