package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/pkg/metrics"
)

// Coordinates travel as text so NUMERIC precision is never rounded through float64.
const (
	selectLocations = `SELECT id, name, address, longitude::text, latitude::text FROM locations`
	insertLocation  = `INSERT INTO locations (name, address, longitude, latitude)
VALUES ($1, $2, $3::text::numeric, $4::text::numeric)
RETURNING id`
	updateLocation = `UPDATE locations
SET name = $2, address = $3, longitude = $4::text::numeric, latitude = $5::text::numeric
WHERE id = $1`
	deleteLocation = `DELETE FROM locations WHERE id = $1`
)

// LocationStore hands out repository sessions over the locations table.
type LocationStore struct {
	pool *pgxpool.Pool
}

func NewLocationStore(pool *pgxpool.Pool) *LocationStore {
	return &LocationStore{pool: pool}
}

// Session satisfies ports.LocationStore.
func (s *LocationStore) Session() ports.LocationRepository {
	return &locationSession{pool: s.pool}
}

// Ping checks database connectivity.
func (s *LocationStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type changeKind int

const (
	changeCreate changeKind = iota
	changeUpdate
	changeDelete
)

type locationChange struct {
	kind changeKind
	loc  *domain.Location
}

// locationSession stages changes and commits them in one transaction.
type locationSession struct {
	pool    *pgxpool.Pool
	pending []locationChange
}

func (r *locationSession) GetAll(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.pool.Query(ctx, selectLocations+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return out, nil
}

func (r *locationSession) FindByID(ctx context.Context, id int64) (*domain.Location, error) {
	loc, err := scanLocation(r.pool.QueryRow(ctx, selectLocations+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return loc, nil
}

func (r *locationSession) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM locations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("location exists: %w", err)
	}
	return exists, nil
}

func (r *locationSession) Create(ctx context.Context, loc *domain.Location) error {
	r.pending = append(r.pending, locationChange{kind: changeCreate, loc: loc})
	return r.commit(ctx)
}

func (r *locationSession) Update(ctx context.Context, loc *domain.Location) error {
	r.pending = append(r.pending, locationChange{kind: changeUpdate, loc: loc})
	return r.commit(ctx)
}

func (r *locationSession) Delete(ctx context.Context, loc *domain.Location) error {
	r.pending = append(r.pending, locationChange{kind: changeDelete, loc: loc})
	return r.commit(ctx)
}

func (r *locationSession) commit(ctx context.Context) error {
	n, err := r.Save(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNoChanges
	}
	return nil
}

// Save applies the staged changes in a single transaction and returns the
// number of rows they affected.
func (r *locationSession) Save(ctx context.Context) (n int, err error) {
	pending := r.pending
	r.pending = nil
	if len(pending) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { metrics.ObserveCommit(driverName, start, n, err) }()

	created := make(map[*domain.Location]int64)
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, c := range pending {
			affected, err := applyChange(ctx, tx, c, created)
			if err != nil {
				return err
			}
			n += affected
		}
		return nil
	})
	if err != nil {
		n = 0
		if pgCode(err) == codeUniqueViolation {
			return 0, domain.ErrConflict
		}
		return 0, fmt.Errorf("commit locations: %w", err)
	}

	for loc, id := range created {
		loc.ID = id
	}
	return n, nil
}

func applyChange(ctx context.Context, tx pgx.Tx, c locationChange, created map[*domain.Location]int64) (int, error) {
	loc := c.loc
	switch c.kind {
	case changeCreate:
		var id int64
		if err := tx.QueryRow(ctx, insertLocation,
			loc.Name, loc.Address, loc.Longitude.String(), loc.Latitude.String(),
		).Scan(&id); err != nil {
			return 0, err
		}
		created[loc] = id
		return 1, nil
	case changeUpdate:
		tag, err := tx.Exec(ctx, updateLocation,
			loc.ID, loc.Name, loc.Address, loc.Longitude.String(), loc.Latitude.String())
		if err != nil {
			return 0, err
		}
		return int(tag.RowsAffected()), nil
	case changeDelete:
		tag, err := tx.Exec(ctx, deleteLocation, loc.ID)
		if err != nil {
			return 0, err
		}
		return int(tag.RowsAffected()), nil
	default:
		return 0, fmt.Errorf("unknown change kind %d", c.kind)
	}
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var (
		loc      domain.Location
		lng, lat string
	)
	if err := row.Scan(&loc.ID, &loc.Name, &loc.Address, &lng, &lat); err != nil {
		return nil, err
	}
	var err error
	if loc.Longitude, err = decimal.NewFromString(lng); err != nil {
		return nil, fmt.Errorf("location %d longitude: %w", loc.ID, err)
	}
	if loc.Latitude, err = decimal.NewFromString(lat); err != nil {
		return nil, fmt.Errorf("location %d latitude: %w", loc.ID, err)
	}
	return &loc, nil
}
