package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acctbase/account-service/internal/core/domain"
)

// RequireSuperuser rejects authenticated, non-superuser actors with 403.
// Must run after Auth.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := c.Get(ActorKey).(*domain.User)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !actor.IsSuperuser {
				return echo.NewHTTPError(http.StatusForbidden, "superuser privileges required")
			}
			return next(c)
		}
	}
}
