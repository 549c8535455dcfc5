package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acctbase/account-service/internal/api/middleware"
	"github.com/acctbase/account-service/internal/core/domain"
)

// ctxActor extracts the authenticated user injected by the Auth
// middleware. Its presence proves the middleware ran; a handler on an
// authenticated route finding no actor is a wiring bug surfaced as 401.
func ctxActor(c echo.Context) (*domain.User, error) {
	actor, ok := c.Get(middleware.ActorKey).(*domain.User)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}
