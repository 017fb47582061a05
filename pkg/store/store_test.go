package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matzehuels/chartkit/pkg/chart"
	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/layout"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	def := &Definition{
		ID:     "a",
		Config: chart.Config{Kind: layout.KindBar},
		Data:   data.Series{data.P("category", "x", "value", 1)},
	}
	if err := s.Put(ctx, def); err != nil {
		t.Fatal(err)
	}
	if !def.CreatedAt.Equal(now) || !def.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v, %v", def.CreatedAt, def.UpdatedAt)
	}

	now = now.Add(time.Hour)
	_ = s.Put(ctx, &Definition{ID: "b"})
	now = now.Add(time.Hour)
	def.Data = append(def.Data, data.P("category", "y", "value", 2))
	_ = s.Put(ctx, def)

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Data) != 2 {
		t.Errorf("Data = %d points, want 2", len(got.Data))
	}
	if got.CreatedAt.Equal(got.UpdatedAt) {
		t.Error("replace reset CreatedAt")
	}

	list, _ := s.List(ctx, 0)
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("List order = %v", ids(list))
	}
	if list, _ := s.List(ctx, 1); len(list) != 1 {
		t.Errorf("List(1) = %d entries", len(list))
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete twice = %v, want ErrNotFound", err)
	}
}

func ids(defs []Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func TestDocumentRoundTrip(t *testing.T) {
	def := Definition{
		ID:     "n",
		Config: chart.Config{Kind: layout.KindNetwork},
		Data: data.Series{
			data.P("category", "a", "links", []any{"b", "c"}),
		},
	}
	doc := toDocument(def)
	if doc.Data[0]["category"] != "a" {
		t.Fatalf("document data = %v", doc.Data)
	}

	// Simulate what the driver decodes.
	doc.Data = []bson.M{{
		"category": "a",
		"links":    primitive.A{"b", "c"},
		"value":    int32(3),
		"at":       primitive.NewDateTimeFromTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		"meta":     primitive.D{{Key: "k", Value: "v"}},
	}}
	back := fromDocument(doc)
	p := back.Data[0]
	if links, ok := p.Strings("links"); !ok || len(links) != 2 || links[1] != "c" {
		t.Errorf("links = %v, %v", links, ok)
	}
	if v, ok := p.Number("value"); !ok || v != 3 {
		t.Errorf("value = %v, %v", v, ok)
	}
	if at, ok := p.Time("at"); !ok || at.Day() != 2 {
		t.Errorf("at = %v, %v", at, ok)
	}
	if m, ok := p.Get("meta"); !ok || m.(map[string]any)["k"] != "v" {
		t.Errorf("meta = %v", m)
	}
}

func TestMongoStoreUnreachable(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoConfig{
		URI:     "mongodb://127.0.0.1:1/?connectTimeoutMS=100",
		Timeout: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("NewMongoStore(unreachable) succeeded")
	}
}
