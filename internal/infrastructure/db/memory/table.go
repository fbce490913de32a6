// Package memory is a process-local store used for development and tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/campusloc/locations-api/internal/core/domain"
)

// Entity is a pointer to a record carrying a store-assigned int64 id.
type Entity[T any] interface {
	*T
	GetID() int64
	SetID(id int64)
}

// Table holds committed rows of one entity type.
type Table[T any, P Entity[T]] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
	// uniqueKey, when set, must be distinct across rows.
	uniqueKey func(*T) string
}

// NewTable returns an empty table whose first id is domain.MinLocationID.
// A non-nil uniqueKey makes commits fail with domain.ErrConflict when two
// rows would share a key.
func NewTable[T any, P Entity[T]](uniqueKey func(*T) string) *Table[T, P] {
	return &Table[T, P]{rows: make(map[int64]T), nextID: domain.MinLocationID, uniqueKey: uniqueKey}
}

// Session opens a repository session with its own staged changes.
func (t *Table[T, P]) Session() *Session[T, P] {
	return &Session[T, P]{table: t}
}

type changeKind int

const (
	changeCreate changeKind = iota
	changeUpdate
	changeDelete
)

type change[T any, P Entity[T]] struct {
	kind   changeKind
	entity P
}

// Session implements the repository contract over a Table.
type Session[T any, P Entity[T]] struct {
	table   *Table[T, P]
	pending []change[T, P]
}

func (s *Session[T, P]) GetAll(_ context.Context) ([]T, error) {
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()

	ids := make([]int64, 0, len(s.table.rows))
	for id := range s.table.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.table.rows[id])
	}
	return out, nil
}

func (s *Session[T, P]) FindByID(_ context.Context, id int64) (*T, error) {
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()

	row, ok := s.table.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (s *Session[T, P]) Exists(_ context.Context, id int64) (bool, error) {
	s.table.mu.RLock()
	defer s.table.mu.RUnlock()

	_, ok := s.table.rows[id]
	return ok, nil
}

func (s *Session[T, P]) Create(ctx context.Context, entity *T) error {
	s.pending = append(s.pending, change[T, P]{kind: changeCreate, entity: P(entity)})
	return s.commit(ctx)
}

func (s *Session[T, P]) Update(ctx context.Context, entity *T) error {
	s.pending = append(s.pending, change[T, P]{kind: changeUpdate, entity: P(entity)})
	return s.commit(ctx)
}

func (s *Session[T, P]) Delete(ctx context.Context, entity *T) error {
	s.pending = append(s.pending, change[T, P]{kind: changeDelete, entity: P(entity)})
	return s.commit(ctx)
}

func (s *Session[T, P]) commit(ctx context.Context) error {
	n, err := s.Save(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNoChanges
	}
	return nil
}

// Save applies every staged change atomically: either all of them are
// committed or, on a conflict, none are.
func (s *Session[T, P]) Save(ctx context.Context) (int, error) {
	pending := s.pending
	s.pending = nil
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.table.mu.Lock()
	defer s.table.mu.Unlock()

	rows := maps.Clone(s.table.rows)
	nextID := s.table.nextID
	applied := 0
	for _, c := range pending {
		id := c.entity.GetID()
		switch c.kind {
		case changeCreate:
			if s.table.conflicts(rows, 0, c.entity) {
				return 0, domain.ErrConflict
			}
			id = nextID
			nextID++
			c.entity.SetID(id)
			rows[id] = *c.entity
			applied++
		case changeUpdate:
			if _, ok := rows[id]; !ok {
				continue
			}
			if s.table.conflicts(rows, id, c.entity) {
				return 0, domain.ErrConflict
			}
			rows[id] = *c.entity
			applied++
		case changeDelete:
			if _, ok := rows[id]; ok {
				delete(rows, id)
				applied++
			}
		}
	}

	s.table.rows = rows
	s.table.nextID = nextID
	return applied, nil
}

// conflicts reports whether entity's unique key is held by a row other than self.
func (t *Table[T, P]) conflicts(rows map[int64]T, self int64, entity *T) bool {
	if t.uniqueKey == nil {
		return false
	}
	key := t.uniqueKey(entity)
	for id, row := range rows {
		if id != self && t.uniqueKey(&row) == key {
			return true
		}
	}
	return false
}
