package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// ctxActor extracts the authenticated actor injected by the Auth middleware
// and performs a fast-fail check before any service call: both the user id
// and a valid role must be present, proving the middleware ran.
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || !domain.Role(role).Valid() {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	name, _ := c.Get("name").(string)
	return ports.Actor{ID: userID, Name: name, Role: domain.Role(role)}, nil
}
