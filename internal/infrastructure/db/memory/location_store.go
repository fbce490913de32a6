package memory

import (
	"context"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
)

// LocationStore keeps locations in process memory.
type LocationStore struct {
	table *Table[domain.Location, *domain.Location]
}

func NewLocationStore() *LocationStore {
	return &LocationStore{table: NewTable[domain.Location, *domain.Location](locationKey)}
}

// locationKey mirrors the (name, address) unique index of the SQL schema.
func locationKey(l *domain.Location) string {
	return l.Name + "\x00" + l.Address
}

// Session satisfies ports.LocationStore.
func (s *LocationStore) Session() ports.LocationRepository {
	return s.table.Session()
}

// Ping always succeeds.
func (s *LocationStore) Ping(context.Context) error { return nil }
