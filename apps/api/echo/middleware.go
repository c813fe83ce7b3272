package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// adminMiddleware sends non-admin users back to their dashboard.
// It must run after authMiddleware.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if usr, ok := getContextUser(ctx); ok && usr.IsAdmin {
				return next(ctx)
			}
			return ctx.Redirect(http.StatusFound, "/")
		}
	}
}
