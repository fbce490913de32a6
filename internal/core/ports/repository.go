package ports

import (
	"context"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// Repository is the uniform persistence contract shared by every entity type.
//
// Create, Update and Delete stage a change and immediately commit it through
// Save. They return domain.ErrNoChanges when the commit persisted nothing
// (for example the row vanished between an existence check and the write).
// Exists and FindByID are independent: Exists never loads the entity.
type Repository[T any, ID comparable] interface {
	GetAll(ctx context.Context) ([]T, error)
	// FindByID returns domain.ErrNotFound when no entity has the given id.
	FindByID(ctx context.Context, id ID) (*T, error)
	Exists(ctx context.Context, id ID) (bool, error)
	// Create assigns the store-generated id to entity on success.
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	// Delete requires the full entity, so callers FindByID first.
	Delete(ctx context.Context, entity *T) error
	// Save commits staged changes and reports how many were persisted.
	// (0, nil) means there was nothing to commit.
	Save(ctx context.Context) (int, error)
}

// LocationRepository is the Repository instantiated over locations.
type LocationRepository = Repository[domain.Location, int64]

// LocationStore hands out request-scoped repository sessions. A session's
// staged changes are never shared with another session.
type LocationStore interface {
	Session() LocationRepository
}
