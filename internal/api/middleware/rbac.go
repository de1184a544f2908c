package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC lets a request through only when the role claim set by Auth is one of
// allowedRoles. Rejections name the offending role.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusForbidden, "token carries no role")
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("role %q may not access the management api", role))
			}
			return next(c)
		}
	}
}
