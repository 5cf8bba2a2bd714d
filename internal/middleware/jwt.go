// Package middleware holds the echo middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/questboard/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"  // uint64
	CtxRole     = "role"     // string
	CtxTimezone = "tz"       // string, may be empty
)

// JWTAuth validates a Bearer access token and stores its subject, role and
// tz claims in the echo context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "missing bearer token"})
			}
			id, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "invalid token"})
			}
			c.Set(CtxUserID, id.UserID)
			c.Set(CtxRole, id.Role)
			c.Set(CtxTimezone, id.Timezone)
			return next(c)
		}
	}
}
