package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "chartkit"
	DefaultCollection = "charts"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string

	// Timeout bounds the initial connect and ping (default 10s).
	Timeout time.Duration
}

// MongoStore keeps definitions in a MongoDB collection, one document per
// chart with the chart ID as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored form of a Definition. Points are stored as plain
// documents so they stay queryable.
type document struct {
	ID        string       `bson:"_id"`
	Config    chart.Config `bson:"config"`
	Data      []bson.M     `bson:"data"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// NewMongoStore connects, pings and ensures the updated_at index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Definition, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chart %s: %w", id, err)
	}
	def := fromDocument(doc)
	return &def, nil
}

func (s *MongoStore) Put(ctx context.Context, def *Definition) error {
	now := time.Now().UTC()
	def.UpdatedAt = now
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	doc := toDocument(*def)

	// created_at is only written on insert so replacing keeps the original.
	set := bson.M{"config": doc.Config, "data": doc.Data, "updated_at": doc.UpdatedAt}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": def.ID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": doc.CreatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert chart %s: %w", def.ID, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete chart %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Definition, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode charts: %w", err)
	}
	out := make([]Definition, len(docs))
	for i, d := range docs {
		out[i] = fromDocument(d)
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

func toDocument(def Definition) document {
	doc := document{
		ID:        def.ID,
		Config:    def.Config,
		Data:      make([]bson.M, len(def.Data)),
		CreatedAt: def.CreatedAt,
		UpdatedAt: def.UpdatedAt,
	}
	for i, p := range def.Data {
		doc.Data[i] = bson.M(p.Fields())
	}
	return doc
}

func fromDocument(doc document) Definition {
	def := Definition{
		ID:        doc.ID,
		Config:    doc.Config,
		Data:      make(data.Series, len(doc.Data)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for i, m := range doc.Data {
		fields := make(map[string]any, len(m))
		for k, v := range m {
			fields[k] = plain(v)
		}
		def.Data[i] = data.NewPoint(fields)
	}
	return def
}

// plain converts BSON decoding types to the types points understand.
func plain(v any) any {
	switch v := v.(type) {
	case primitive.A:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plain(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = plain(e.Value)
		}
		return out
	case primitive.DateTime:
		return v.Time().UTC()
	case int32:
		return int64(v)
	}
	return v
}
