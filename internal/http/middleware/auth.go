package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/apperr"
	"casedocs/internal/policy"
)

const (
	// UserIDHeader and UserRolesHeader are set by the authenticating gateway.
	UserIDHeader    = "X-User-ID"
	UserRolesHeader = "X-User-Roles"
	// IdentityLocalKey stores the caller's Identity in Fiber's context locals.
	IdentityLocalKey = "identity"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Roles  []policy.Role
}

// Identify reads the caller identity forwarded by the gateway. Requests without a valid
// identity are rejected with UNAUTHORIZED.
func Identify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := strconv.ParseInt(strings.TrimSpace(c.Get(UserIDHeader)), 10, 64)
		if err != nil || uid <= 0 {
			return apperr.Unauthorized
		}
		roles, err := policy.ParseRoles(c.Get(UserRolesHeader))
		if err != nil || len(roles) == 0 {
			return apperr.Unauthorized
		}
		c.Locals(IdentityLocalKey, Identity{UserID: uid, Roles: roles})
		return c.Next()
	}
}

// Authorize checks the matched route against p. It must be registered on the route itself
// so the route pattern is known.
func Authorize(p *policy.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return apperr.Unauthorized
		}
		if !p.Allowed(id.Roles, c.Route().Path, c.Method()) {
			return apperr.Forbidden
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Identify.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(IdentityLocalKey).(Identity)
	return id, ok
}
