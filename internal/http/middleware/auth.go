package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"verifyapi/internal/identity"
)

// UserIDLocalKey is the fiber locals key holding the authenticated user ID.
const UserIDLocalKey = "user_id"

// Authenticate resolves the bearer token into an identity.Actor stored in the
// request's user context. Requests without a valid token get 401.
func Authenticate(v *identity.Verifier, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := v.Verify(identity.BearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			logger.Debug("bearer token rejected", zap.String("path", c.Path()), zap.Error(err))
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals(UserIDLocalKey, actor.UserID)
		c.SetUserContext(identity.WithActor(c.UserContext(), actor))
		return c.Next()
	}
}
