// Package middleware contains the Echo middleware of the club API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the user id and role
// in the context, where UserID and Role read them back.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			id, _ := claims.UserID()
			c.Set(ctxUserID, id)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
