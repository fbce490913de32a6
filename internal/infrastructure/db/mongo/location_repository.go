package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusloc/locations-api/internal/core/domain"
	"github.com/campusloc/locations-api/internal/core/ports"
	"github.com/campusloc/locations-api/internal/pkg/metrics"
)

// LocationStore hands out repository sessions over the locations collection.
// Integer ids are allocated from the counters collection.
type LocationStore struct {
	db *mongo.Database
}

func NewLocationStore(db *mongo.Database) *LocationStore {
	return &LocationStore{db: db}
}

// Session satisfies ports.LocationStore.
func (s *LocationStore) Session() ports.LocationRepository {
	return &locationSession{
		locations: s.db.Collection(collectionLocations),
		counters:  s.db.Collection(collectionCounters),
	}
}

// Ping checks database connectivity.
func (s *LocationStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

type mongoLocation struct {
	ID        int64                `bson:"_id"`
	Name      string               `bson:"name"`
	Address   string               `bson:"address"`
	Longitude primitive.Decimal128 `bson:"longitude"`
	Latitude  primitive.Decimal128 `bson:"latitude"`
}

func toDocument(loc *domain.Location) (mongoLocation, error) {
	lng, err := primitive.ParseDecimal128(loc.Longitude.String())
	if err != nil {
		return mongoLocation{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := primitive.ParseDecimal128(loc.Latitude.String())
	if err != nil {
		return mongoLocation{}, fmt.Errorf("latitude: %w", err)
	}
	return mongoLocation{ID: loc.ID, Name: loc.Name, Address: loc.Address, Longitude: lng, Latitude: lat}, nil
}

func (m mongoLocation) toDomain() (domain.Location, error) {
	lng, err := decimal.NewFromString(m.Longitude.String())
	if err != nil {
		return domain.Location{}, fmt.Errorf("location %d longitude: %w", m.ID, err)
	}
	lat, err := decimal.NewFromString(m.Latitude.String())
	if err != nil {
		return domain.Location{}, fmt.Errorf("location %d latitude: %w", m.ID, err)
	}
	return domain.Location{ID: m.ID, Name: m.Name, Address: m.Address, Longitude: lng, Latitude: lat}, nil
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

// locationSession stages changes and applies them on Save. Each staged change
// is a single-document write, which MongoDB applies atomically.
type locationSession struct {
	locations *mongo.Collection
	counters  *mongo.Collection
	pending   []locationChange
}

func (r *locationSession) GetAll(ctx context.Context) ([]domain.Location, error) {
	cur, err := r.locations.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	var docs []mongoLocation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	out := make([]domain.Location, 0, len(docs))
	for _, d := range docs {
		loc, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, nil
}

func (r *locationSession) FindByID(ctx context.Context, id int64) (*domain.Location, error) {
	var doc mongoLocation
	if err := r.locations.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	loc, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationSession) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := r.locations.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("location exists: %w", err)
	}
	return n > 0, nil
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

// Save applies the staged changes in order and returns how many documents
// they inserted, modified or removed.
func (r *locationSession) Save(ctx context.Context) (n int, err error) {
	pending := r.pending
	r.pending = nil
	if len(pending) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { metrics.ObserveCommit(driverName, start, n, err) }()

	for _, c := range pending {
		affected, err := r.apply(ctx, c)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return n, domain.ErrConflict
			}
			return n, fmt.Errorf("commit locations: %w", err)
		}
		n += affected
	}
	return n, nil
}

func (r *locationSession) apply(ctx context.Context, c locationChange) (int, error) {
	switch c.kind {
	case changeCreate:
		id, err := r.nextID(ctx)
		if err != nil {
			return 0, err
		}
		staged := *c.loc
		staged.ID = id
		doc, err := toDocument(&staged)
		if err != nil {
			return 0, err
		}
		if _, err := r.locations.InsertOne(ctx, doc); err != nil {
			return 0, err
		}
		c.loc.ID = id
		return 1, nil
	case changeUpdate:
		doc, err := toDocument(c.loc)
		if err != nil {
			return 0, err
		}
		res, err := r.locations.ReplaceOne(ctx, bson.M{"_id": c.loc.ID}, doc)
		if err != nil {
			return 0, err
		}
		return int(res.MatchedCount), nil
	case changeDelete:
		res, err := r.locations.DeleteOne(ctx, bson.M{"_id": c.loc.ID})
		if err != nil {
			return 0, err
		}
		return int(res.DeletedCount), nil
	default:
		return 0, fmt.Errorf("unknown change kind %d", c.kind)
	}
}

// nextID atomically increments and returns the locations sequence.
func (r *locationSession) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionLocations},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next location id: %w", err)
	}
	return counter.Seq, nil
}
