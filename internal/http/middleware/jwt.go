package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"hisapi/internal/auth"
)

// ClaimsLocalKey stores the *auth.Claims of the authenticated caller in Fiber's locals.
const ClaimsLocalKey = "claims"

// TokenParser validates session tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// JWTAuth requires a valid "Authorization: Bearer <token>" header.
func JWTAuth(p TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, auth.TokenType) || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := p.Parse(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
		}
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the caller's claims, or nil on unauthenticated routes.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims
}
