package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user's id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok
}

// Role returns the role claim of the authenticated user.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// subject identifies the caller for rate limit keys; "anon" when the
// request is not authenticated.
func subject(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
