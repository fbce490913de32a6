package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusloc/locations-api/internal/pkg/metrics"
)

// RequireRoles lets the request through when the authenticated caller holds
// at least one of roles. It must run after Auth.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				metrics.GateRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !principal.HasAnyRole(roles...) {
				metrics.GateRejectionsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
