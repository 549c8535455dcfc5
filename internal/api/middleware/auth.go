package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/acctbase/account-service/internal/core/ports"
)

// ActorKey is the context key under which Auth stores the resolved user.
const ActorKey = "actor"

// Auth verifies the bearer access token, loads the subject from the
// repository and injects it into the request context. Missing,
// malformed, expired or wrong-typed tokens, unknown subjects and
// inactive accounts are all rejected with 401.
func Auth(tokens ports.TokenService, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Verify(parts[1], ports.TokenTypeAccess)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "inactive user")
			}

			c.Set(ActorKey, user)

			return next(c)
		}
	}
}
