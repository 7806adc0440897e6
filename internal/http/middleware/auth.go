package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

const (
	// HeaderUserID carries the external identity id, injected by the
	// authenticating reverse proxy. Requests without it are anonymous.
	HeaderUserID = "X-User-ID"
	// Optional profile headers, used to seed the local record on first contact.
	HeaderUserEmail     = "X-User-Email"
	HeaderUserFirstName = "X-User-First-Name"
	HeaderUserLastName  = "X-User-Last-Name"
	HeaderUserImage     = "X-User-Image"

	// UserLocalKey is the context locals key holding the resolved *model.User.
	UserLocalKey = "user"
)

// Identity resolves the authenticated user from the proxy-injected identity
// headers and stores it in context locals. On first contact the local record
// is created from the profile headers with the default role. Requests without
// an identity header are rejected with 401.
func Identity(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderUserID)
		if id == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		u, err := users.Get(c.Context(), id)
		if errors.Is(err, service.ErrNotFound) {
			u, err = users.Sync(c.Context(), service.UserInput{
				ID:        id,
				Email:     c.Get(HeaderUserEmail),
				FirstName: c.Get(HeaderUserFirstName),
				LastName:  c.Get(HeaderUserLastName),
				ImageURL:  c.Get(HeaderUserImage),
			})
		}
		if err != nil {
			return err
		}

		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose resolved user is not an admin.
// It must run after Identity.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := UserFromCtx(c)
		if u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if !u.Role.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// UserFromCtx returns the user resolved by Identity, or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}
