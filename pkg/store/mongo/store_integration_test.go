//go:build integration

package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/artistgraph/pkg/artist"
	"github.com/matzehuels/artistgraph/pkg/store"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	uri := os.Getenv("ARTISTGRAPH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ARTISTGRAPH_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := "artistgraph_test_" + uuid.NewString()[:8]
	p := NewProvider(uri, db, 5*time.Second)
	s, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		p.client.Database(db).Drop(ctx)
		p.Close(ctx)
	})
	return s
}

func TestStore_Integration(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := s.UpsertArtist(ctx, artist.Artist{Name: "Radiohead", Tags: []string{"rock"}})
	if err != nil {
		t.Fatalf("UpsertArtist: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected assigned ID")
	}

	again, err := s.UpsertArtist(ctx, artist.Artist{Name: "radiohead", Listeners: 5})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != a.ID {
		t.Errorf("ID changed on re-upsert: %s -> %s", a.ID, again.ID)
	}
	if again.Tags != nil {
		t.Errorf("re-upsert should replace tags, got %v", again.Tags)
	}

	got, err := s.GetArtist(ctx, "RADIOHEAD")
	if err != nil || got == nil || got.Listeners != 5 {
		t.Fatalf("GetArtist() = %+v, %v", got, err)
	}
	if missing, err := s.GetArtist(ctx, "nobody"); err != nil || missing != nil {
		t.Errorf("GetArtist(nobody) = %+v, %v", missing, err)
	}

	b, _ := s.UpsertArtist(ctx, artist.Artist{Name: "Portishead"})
	c, _ := s.UpsertArtist(ctx, artist.Artist{Name: "Massive Attack"})
	batch := []store.EdgeRecord{
		{SourceID: a.ID, TargetID: b.ID, Score: 0.4, Depth: 1},
		{SourceID: a.ID, TargetID: c.ID, Score: 0.8, Depth: 1},
	}
	for range 2 {
		if err := s.UpsertEdges(ctx, batch); err != nil {
			t.Fatalf("UpsertEdges: %v", err)
		}
	}

	edges, err := s.GetCachedEdges(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	if edges[0].Target.Name != "Massive Attack" {
		t.Errorf("edges not ordered by score: %+v", edges)
	}
}
