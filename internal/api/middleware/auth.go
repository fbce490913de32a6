package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/pkg/metrics"
)

const principalKey = "principal"

// Auth verifies the bearer token and stores the caller's Principal in the
// echo context. Requests without a valid, unexpired token stop here with 401.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, "missing", "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return unauthorized(c, "malformed", "invalid authorization header")
			}

			principal, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return unauthorized(c, "expired", "token expired")
				}
				return unauthorized(c, "invalid", "invalid token")
			}

			SetPrincipal(c, *principal)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, reason, msg string) error {
	metrics.GateRejectionsTotal.WithLabelValues(reason).Inc()
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="locations"`)
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

// SetPrincipal attaches the authenticated caller to c.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller stored by Auth, if any.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
