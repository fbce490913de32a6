package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/infrastructure/db/memory"
	"github.com/campusloc/locations-api/internal/pkg/validation"
)

// countingStore wraps a LocationStore and counts every repository call.
type countingStore struct {
	inner ports.LocationStore
	calls int
}

func (s *countingStore) Session() ports.LocationRepository {
	return &countingRepo{inner: s.inner.Session(), calls: &s.calls}
}

type countingRepo struct {
	inner ports.LocationRepository
	calls *int
}

func (r *countingRepo) GetAll(ctx context.Context) ([]domain.Location, error) {
	*r.calls++
	return r.inner.GetAll(ctx)
}

func (r *countingRepo) FindByID(ctx context.Context, id int64) (*domain.Location, error) {
	*r.calls++
	return r.inner.FindByID(ctx, id)
}

func (r *countingRepo) Exists(ctx context.Context, id int64) (bool, error) {
	*r.calls++
	return r.inner.Exists(ctx, id)
}

func (r *countingRepo) Create(ctx context.Context, loc *domain.Location) error {
	*r.calls++
	return r.inner.Create(ctx, loc)
}

func (r *countingRepo) Update(ctx context.Context, loc *domain.Location) error {
	*r.calls++
	return r.inner.Update(ctx, loc)
}

func (r *countingRepo) Delete(ctx context.Context, loc *domain.Location) error {
	*r.calls++
	return r.inner.Delete(ctx, loc)
}

func (r *countingRepo) Save(ctx context.Context) (int, error) {
	*r.calls++
	return r.inner.Save(ctx)
}

// failingStore returns a repository whose every call fails.
type failingStore struct{ err error }

func (s failingStore) Session() ports.LocationRepository { return failingRepo(s) }

type failingRepo struct{ err error }

func (r failingRepo) GetAll(context.Context) ([]domain.Location, error)          { return nil, r.err }
func (r failingRepo) FindByID(context.Context, int64) (*domain.Location, error) { return nil, r.err }
func (r failingRepo) Exists(context.Context, int64) (bool, error)               { return false, r.err }
func (r failingRepo) Create(context.Context, *domain.Location) error            { return r.err }
func (r failingRepo) Update(context.Context, *domain.Location) error            { return r.err }
func (r failingRepo) Delete(context.Context, *domain.Location) error            { return r.err }
func (r failingRepo) Save(context.Context) (int, error)                         { return 0, r.err }

type stubIdempotency struct {
	keys      map[string]int64
	lookupErr error
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (int64, bool, error) {
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, key string, id int64) error {
	s.keys[key] = id
	return nil
}

func newLocationService(idem ports.IdempotencyStore) (*LocationService, *countingStore) {
	store := &countingStore{inner: memory.NewLocationStore()}
	return NewLocationService(store, idem, validation.New(), zerolog.Nop()), store
}

func libraryInput() *ports.LocationInput {
	return &ports.LocationInput{Name: "Library", Address: "1 Main St", Longitude: "-0.1", Latitude: "51.5"}
}

func mustCreate(t *testing.T, svc *LocationService, in *ports.LocationInput) *domain.Location {
	t.Helper()
	res, err := svc.Create(context.Background(), ports.CreateLocationInput{Payload: in})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return res.Location
}

func TestLocationService_CreateThenGet(t *testing.T) {
	svc, _ := newLocationService(nil)

	created := mustCreate(t, svc, libraryInput())
	if !domain.ValidID(created.ID) {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Library" || got.Address != "1 Main St" {
		t.Fatalf("unexpected location: %+v", got)
	}
	if !got.Longitude.Equal(decimal.RequireFromString("-0.1")) || !got.Latitude.Equal(decimal.RequireFromString("51.5")) {
		t.Fatalf("unexpected coordinates: %s %s", got.Longitude, got.Latitude)
	}
}

func TestLocationService_Create_IgnoresPayloadID(t *testing.T) {
	svc, _ := newLocationService(nil)

	in := libraryInput()
	in.ID = 77
	created := mustCreate(t, svc, in)
	if created.ID == 77 {
		t.Fatalf("store must assign the id")
	}
}

func TestLocationService_Create_Rejects(t *testing.T) {
	svc, store := newLocationService(nil)

	_, err := svc.Create(context.Background(), ports.CreateLocationInput{})
	if !errors.Is(err, domain.ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}

	bad := libraryInput()
	bad.Latitude = "95"
	_, err = svc.Create(context.Background(), ports.CreateLocationInput{Payload: bad})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}
}

func TestLocationService_Create_Conflict(t *testing.T) {
	svc, _ := newLocationService(nil)
	mustCreate(t, svc, libraryInput())

	_, err := svc.Create(context.Background(), ports.CreateLocationInput{Payload: libraryInput()})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLocationService_Create_StoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewLocationService(failingStore{err: boom}, nil, validation.New(), zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateLocationInput{Payload: libraryInput()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if domain.IsClientError(err) {
		t.Fatalf("store failure must not be reported as a client error")
	}
}

func TestLocationService_Create_Idempotent(t *testing.T) {
	idem := &stubIdempotency{keys: map[string]int64{}}
	svc, _ := newLocationService(idem)

	first, err := svc.Create(context.Background(), ports.CreateLocationInput{Payload: libraryInput(), IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}
	second, err := svc.Create(context.Background(), ports.CreateLocationInput{Payload: libraryInput(), IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("second Create returned error: %v", err)
	}
	if !second.Replayed || second.Location.ID != first.Location.ID {
		t.Fatalf("expected replay of %d, got %+v", first.Location.ID, second)
	}

	all, _ := svc.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("expected 1 location, got %d", len(all))
	}
}

func TestLocationService_Create_IdempotencyLookupFailure(t *testing.T) {
	idem := &stubIdempotency{keys: map[string]int64{}, lookupErr: errors.New("redis down")}
	svc, _ := newLocationService(idem)

	res, err := svc.Create(context.Background(), ports.CreateLocationInput{Payload: libraryInput(), IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if res.Replayed {
		t.Fatalf("expected a fresh create")
	}
}

func TestLocationService_Get_NotFound(t *testing.T) {
	svc, _ := newLocationService(nil)

	for _, id := range []int64{0, -1, 999} {
		if _, err := svc.Get(context.Background(), id); !errors.Is(err, domain.ErrLocationNotFound) {
			t.Fatalf("id %d: expected ErrLocationNotFound, got %v", id, err)
		}
	}
}

func TestLocationService_Update_IDMismatchBeforeStore(t *testing.T) {
	svc, store := newLocationService(nil)

	in := libraryInput()
	in.ID = 6
	err := svc.Update(context.Background(), ports.UpdateLocationInput{PathID: 5, Payload: in})
	if !errors.Is(err, domain.ErrIDMismatch) {
		t.Fatalf("expected ErrIDMismatch, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}
}

func TestLocationService_Update_Rejects(t *testing.T) {
	svc, store := newLocationService(nil)

	if err := svc.Update(context.Background(), ports.UpdateLocationInput{PathID: 1}); !errors.Is(err, domain.ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
	if err := svc.Update(context.Background(), ports.UpdateLocationInput{PathID: 0, Payload: libraryInput()}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}

	in := libraryInput()
	in.ID = 42
	if err := svc.Update(context.Background(), ports.UpdateLocationInput{PathID: 42, Payload: in}); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestLocationService_Update_ValidatesAfterExists(t *testing.T) {
	svc, _ := newLocationService(nil)
	created := mustCreate(t, svc, libraryInput())

	in := libraryInput()
	in.ID = created.ID
	in.Name = ""
	err := svc.Update(context.Background(), ports.UpdateLocationInput{PathID: created.ID, Payload: in})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLocationService_Update(t *testing.T) {
	svc, _ := newLocationService(nil)
	created := mustCreate(t, svc, libraryInput())

	in := &ports.LocationInput{ID: created.ID, Name: "Main Library", Address: "1 Main St", Longitude: "-0.12", Latitude: "51.51"}
	if err := svc.Update(context.Background(), ports.UpdateLocationInput{PathID: created.ID, Payload: in}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Main Library" || got.Longitude.String() != "-0.12" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestLocationService_Delete(t *testing.T) {
	svc, _ := newLocationService(nil)
	created := mustCreate(t, svc, libraryInput())

	if err := svc.Delete(context.Background(), ports.DeleteLocationInput{PathID: created.ID}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected deleted location to be gone, got %v", err)
	}
	if err := svc.Delete(context.Background(), ports.DeleteLocationInput{PathID: created.ID}); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound on second delete, got %v", err)
	}
}

func TestLocationService_Delete_Rejects(t *testing.T) {
	svc, store := newLocationService(nil)

	if err := svc.Delete(context.Background(), ports.DeleteLocationInput{PathID: 0}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("expected no store calls, got %d", store.calls)
	}
	if err := svc.Delete(context.Background(), ports.DeleteLocationInput{PathID: 999}); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestLocationService_List_StoreFailure(t *testing.T) {
	boom := errors.New("timeout")
	svc := NewLocationService(failingStore{err: boom}, nil, validation.New(), zerolog.Nop())

	if _, err := svc.List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// vanishingRepo reports the row as present but every write commits nothing,
// as when a concurrent delete lands between the existence check and the write.
type vanishingRepo struct{ failingRepo }

func (vanishingRepo) Exists(context.Context, int64) (bool, error) { return true, nil }

func (vanishingRepo) FindByID(_ context.Context, id int64) (*domain.Location, error) {
	return &domain.Location{ID: id, Name: "Library", Address: "1 Main St"}, nil
}

type vanishingStore struct{}

func (vanishingStore) Session() ports.LocationRepository {
	return vanishingRepo{failingRepo{err: domain.ErrNoChanges}}
}

func TestLocationService_NoChangesIsNotFound(t *testing.T) {
	svc := NewLocationService(vanishingStore{}, nil, validation.New(), zerolog.Nop())
	ctx := context.Background()

	in := libraryInput()
	in.ID = 7
	if err := svc.Update(ctx, ports.UpdateLocationInput{PathID: 7, Payload: in}); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("Update: expected ErrLocationNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, ports.DeleteLocationInput{PathID: 7}); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("Delete: expected ErrLocationNotFound, got %v", err)
	}
}

func TestLocationService_CreateKeepsFullPrecision(t *testing.T) {
	svc, _ := newLocationService(nil)

	in := &ports.LocationInput{Name: "Observatory", Address: "Hill Rd", Longitude: "-0.123456789", Latitude: "51.500000001"}
	created := mustCreate(t, svc, in)

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Longitude.String() != "-0.123456789" || got.Latitude.String() != "51.500000001" {
		t.Fatalf("coordinates changed on round trip: %s %s", got.Longitude, got.Latitude)
	}
}
