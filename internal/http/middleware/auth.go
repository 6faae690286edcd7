package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/auth"
	"signdesk/internal/model"
)

// ActorLocalKey is the key under which Authenticate stores the verified model.Actor.
const ActorLocalKey = "actor"

// Authenticate verifies the bearer token and stores the caller as a model.Actor in locals.
// Requests without a valid token fail with 401.
func Authenticate(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		actor, err := auth.ParseToken(strings.TrimSpace(token), secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		actor.SourceIP = c.IP()

		c.Locals(ActorLocalKey, actor)
		return c.Next()
	}
}

// ActorFromCtx returns the actor stored by Authenticate.
func ActorFromCtx(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(ActorLocalKey).(model.Actor)
	return actor, ok
}
