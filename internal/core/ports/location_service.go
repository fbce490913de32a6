package ports

import (
	"context"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// LocationInput is the caller-supplied payload for create and update.
// Coordinates arrive as decimal strings and are parsed after validation.
type LocationInput struct {
	ID        int64  `validate:"omitempty,gte=0"`
	Name      string `validate:"required,max=200"`
	Address   string `validate:"required,max=500"`
	Longitude string `validate:"required,longitude"`
	Latitude  string `validate:"required,latitude"`
}

// CreateLocationInput wraps a create payload. Payload is nil when the request had no body.
type CreateLocationInput struct {
	Payload        *LocationInput
	IdempotencyKey string
	Actor          domain.Principal
}

// UpdateLocationInput wraps an update payload addressed by PathID.
type UpdateLocationInput struct {
	PathID  int64
	Payload *LocationInput
	Actor   domain.Principal
}

// DeleteLocationInput addresses the location to remove.
type DeleteLocationInput struct {
	PathID int64
	Actor  domain.Principal
}

// CreateLocationResult is returned by Create.
type CreateLocationResult struct {
	Location *domain.Location
	// Replayed is true when the Idempotency-Key matched an earlier create.
	Replayed bool
}

// LocationService sequences the location use cases.
type LocationService interface {
	List(ctx context.Context) ([]domain.Location, error)
	Get(ctx context.Context, id int64) (*domain.Location, error)
	Create(ctx context.Context, in CreateLocationInput) (*CreateLocationResult, error)
	Update(ctx context.Context, in UpdateLocationInput) error
	Delete(ctx context.Context, in DeleteLocationInput) error
}

// IdempotencyStore remembers which location a create request key produced.
type IdempotencyStore interface {
	// Lookup returns (0, false, nil) when the key has not been recorded.
	Lookup(ctx context.Context, key string) (int64, bool, error)
	Remember(ctx context.Context, key string, id int64) error
}
