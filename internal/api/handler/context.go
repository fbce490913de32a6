package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campusloc/locations-api/internal/api/middleware"
	"github.com/campusloc/locations-api/internal/core/domain"
)

// actor returns the caller established by the Auth middleware. Protected
// routes always have one; an absent principal means the route was wired
// without the gate.
func actor(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// pathID parses the :id route parameter. ok is false when it is not an integer.
func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
