package ports

import (
	"context"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// TokenIssuer signs bearer tokens for verified identities.
type TokenIssuer interface {
	Issue(user *domain.User, roles []string) (string, error)
}

// TokenVerifier checks a presented token's signature and expiry.
type TokenVerifier interface {
	// Verify returns domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	Verify(token string) (*domain.Principal, error)
}

// AuthService exchanges credentials for a signed token.
type AuthService interface {
	// Authenticate returns domain.ErrInvalidCredentials for both unknown
	// users and wrong passwords.
	Authenticate(ctx context.Context, username, password string) (string, error)
}
