package source

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/timeline"
)

type fakeCollection struct {
	docs   []interface{}
	err    error
	filter interface{}
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func TestMongoSourceLoad(t *testing.T) {
	coll := &fakeCollection{docs: []interface{}{
		bson.M{"_id": "a1", "id": "1", "start_date": "2024-03-01", "end_date": "2024-03-10", "title": "Müller Bad", "status": "overdue"},
		bson.M{"_id": "a2", "id": "2", "start_date": "2024-03-05", "end_date": "2024-03-15", "title": "Schmidt Dach"},
	}}
	src := &MongoSource{coll: coll, name: "mongo:planner.items"}

	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Items) != 2 || snap.Items[0].Title != "Müller Bad" || snap.Items[0].Status != "overdue" {
		t.Errorf("unexpected items: %+v", snap.Items)
	}
	if diff := cmp.Diff(bson.M{}, coll.filter); diff != "" {
		t.Errorf("Load should not filter (-want +got):\n%s", diff)
	}
	if snap.Revision == "" {
		t.Error("Revision should be set")
	}
}

func TestMongoSourceLoadRange(t *testing.T) {
	coll := &fakeCollection{}
	src := &MongoSource{coll: coll, name: "mongo:planner.items"}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	if _, err := src.LoadRange(context.Background(), from, to); err != nil {
		t.Fatal(err)
	}
	want := bson.M{
		"start_date": bson.M{"$lt": "2024-04-01"},
		"$or": bson.A{
			bson.M{"end_date": bson.M{"$gte": "2024-03-01"}},
			bson.M{"start_date": bson.M{"$gte": "2024-03-01"}},
		},
	}
	if diff := cmp.Diff(want, coll.filter); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestMongoSourceQueryError(t *testing.T) {
	src := &MongoSource{coll: &fakeCollection{err: fmt.Errorf("connection reset")}, name: "mongo:x.y"}
	_, err := src.Load(context.Background())
	if !errors.Is(err, errors.ErrCodeSourceUnavailable) {
		t.Errorf("err = %v, want SOURCE_UNAVAILABLE", err)
	}
}

func TestLoadWindowUsesRangeLoader(t *testing.T) {
	coll := &fakeCollection{}
	src := &MongoSource{coll: coll, name: "mongo:planner.items"}
	w, err := timeline.Resolve(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), timeline.Month)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWindow(context.Background(), src, w); err != nil {
		t.Fatal(err)
	}
	if m, ok := coll.filter.(bson.M); !ok || len(m) == 0 {
		t.Errorf("LoadWindow should pass a range filter, got %v", coll.filter)
	}
}
