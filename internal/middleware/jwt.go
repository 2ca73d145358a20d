package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-auth/internal/token"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token with the codec and injects its claims into the request context.
// Handlers behind it read the authenticated user via c.Get("user_id"),
// c.Get("role") and c.Get("device_id"). The role name travels in the
// token itself, so no database round trip happens here.
func JWTAuth(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := codec.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", claims.RoleName)
			c.Set("device_id", claims.DeviceID)
			return next(c)
		}
	}
}
