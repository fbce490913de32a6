package ports

import (
	"context"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// CredentialStore holds accounts, their password hashes and role memberships.
type CredentialStore interface {
	// FindByUsername returns domain.ErrUserNotFound for unknown usernames.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Roles(ctx context.Context, userID string) ([]string, error)
}

// IdentityProvisioner creates roles and accounts. Used by seeding only.
type IdentityProvisioner interface {
	CredentialStore
	EnsureRole(ctx context.Context, name string) error
	// CreateUser returns domain.ErrUserExists on a duplicate username and
	// assigns user.ID on success.
	CreateUser(ctx context.Context, user *domain.User) error
	// AssignRole returns domain.ErrUnknownRole when the role does not exist.
	AssignRole(ctx context.Context, userID, role string) error
}
