package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
)

// StructValidator checks a payload's field constraints.
type StructValidator interface {
	Validate(i any) error
}

// LocationService sequences existence checks, validation and repository
// calls for every location use case. Each call opens its own repository
// session; nothing is cached between calls.
type LocationService struct {
	store     ports.LocationStore
	idem      ports.IdempotencyStore
	validator StructValidator
	log       zerolog.Logger
}

// NewLocationService returns a LocationService. idem may be nil, in which
// case Idempotency-Key values are ignored.
func NewLocationService(store ports.LocationStore, idem ports.IdempotencyStore, v StructValidator, log zerolog.Logger) *LocationService {
	return &LocationService{store: store, idem: idem, validator: v, log: log}
}

// List returns every stored location in the store's natural order.
func (s *LocationService) List(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.store.Session().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// Get returns the location with the given id.
func (s *LocationService) Get(ctx context.Context, id int64) (*domain.Location, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrLocationNotFound
	}
	loc, err := s.store.Session().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Int64("id", id).Msg("location not found")
			return nil, domain.ErrLocationNotFound
		}
		return nil, fmt.Errorf("get location %d: %w", id, err)
	}
	return loc, nil
}

// Create validates the payload and persists a new location. When an
// idempotency key was already used, the location it produced is returned.
func (s *LocationService) Create(ctx context.Context, in ports.CreateLocationInput) (*ports.CreateLocationResult, error) {
	if in.Payload == nil {
		return nil, domain.ErrMissingPayload
	}
	if err := s.validator.Validate(in.Payload); err != nil {
		return nil, err
	}

	repo := s.store.Session()

	if replay := s.replay(ctx, repo, in.IdempotencyKey); replay != nil {
		return &ports.CreateLocationResult{Location: replay, Replayed: true}, nil
	}

	loc, err := toLocation(in.Payload)
	if err != nil {
		return nil, err
	}
	loc.ID = 0

	if err := repo.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, in.IdempotencyKey, loc.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to record idempotency key")
		}
	}

	s.log.Info().Int64("id", loc.ID).Str("actor", in.Actor.Subject).Msg("location created")
	return &ports.CreateLocationResult{Location: loc}, nil
}

// replay returns the location an earlier request with key created, or nil.
func (s *LocationService) replay(ctx context.Context, repo ports.LocationRepository, key string) *domain.Location {
	if key == "" || s.idem == nil {
		return nil
	}
	id, ok, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !ok {
		return nil
	}
	existing, err := repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Int64("id", id).Msg("idempotent replay lookup failed")
		}
		return nil
	}
	s.log.Info().Str("idempotency_key", key).Int64("id", id).Msg("idempotent replay")
	return existing
}

// Update replaces every mutable field of an existing location. Payload
// shape and id agreement are checked before the store is touched.
func (s *LocationService) Update(ctx context.Context, in ports.UpdateLocationInput) error {
	if in.Payload == nil {
		return domain.ErrMissingPayload
	}
	if !domain.ValidID(in.PathID) {
		return domain.ErrInvalidID
	}
	if in.PathID != in.Payload.ID {
		s.log.Warn().Int64("id", in.PathID).Int64("payload_id", in.Payload.ID).Msg("update id mismatch")
		return domain.ErrIDMismatch
	}

	repo := s.store.Session()

	exists, err := repo.Exists(ctx, in.PathID)
	if err != nil {
		return fmt.Errorf("update location %d: exists: %w", in.PathID, err)
	}
	if !exists {
		s.log.Warn().Int64("id", in.PathID).Msg("location not found")
		return domain.ErrLocationNotFound
	}

	if err := s.validator.Validate(in.Payload); err != nil {
		return err
	}

	loc, err := toLocation(in.Payload)
	if err != nil {
		return err
	}
	loc.ID = in.PathID

	if err := repo.Update(ctx, loc); err != nil {
		if errors.Is(err, domain.ErrNoChanges) {
			return domain.ErrLocationNotFound
		}
		return fmt.Errorf("update location %d: %w", in.PathID, err)
	}

	s.log.Info().Int64("id", in.PathID).Str("actor", in.Actor.Subject).Msg("location updated")
	return nil
}

// Delete removes an existing location.
func (s *LocationService) Delete(ctx context.Context, in ports.DeleteLocationInput) error {
	if !domain.ValidID(in.PathID) {
		s.log.Warn().Int64("id", in.PathID).Msg("invalid id passed")
		return domain.ErrInvalidID
	}

	repo := s.store.Session()

	exists, err := repo.Exists(ctx, in.PathID)
	if err != nil {
		return fmt.Errorf("delete location %d: exists: %w", in.PathID, err)
	}
	if !exists {
		s.log.Warn().Int64("id", in.PathID).Msg("location not found")
		return domain.ErrLocationNotFound
	}

	loc, err := repo.FindByID(ctx, in.PathID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrLocationNotFound
		}
		return fmt.Errorf("delete location %d: find: %w", in.PathID, err)
	}

	if err := repo.Delete(ctx, loc); err != nil {
		if errors.Is(err, domain.ErrNoChanges) {
			return domain.ErrLocationNotFound
		}
		return fmt.Errorf("delete location %d: %w", in.PathID, err)
	}

	s.log.Info().Int64("id", in.PathID).Str("actor", in.Actor.Subject).Msg("location deleted")
	return nil
}

// toLocation parses a validated payload into the domain entity.
func toLocation(in *ports.LocationInput) (*domain.Location, error) {
	lng, err := decimal.NewFromString(in.Longitude)
	if err != nil {
		return nil, &domain.ValidationError{Fields: []string{"longitude must be a decimal"}}
	}
	lat, err := decimal.NewFromString(in.Latitude)
	if err != nil {
		return nil, &domain.ValidationError{Fields: []string{"latitude must be a decimal"}}
	}
	return &domain.Location{
		ID:        in.ID,
		Name:      in.Name,
		Address:   in.Address,
		Longitude: lng,
		Latitude:  lat,
	}, nil
}
