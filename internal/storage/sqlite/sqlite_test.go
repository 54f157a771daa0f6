package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/namevet/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "namevet.db")
	b, err := New(dsn)
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC() // SQLite stores UTC well
	run := uuid.New()

	rec := &storage.Record{
		ID:           uuid.New(),
		RunID:        run,
		Rank:         1,
		Name:         "Zúrvok",
		Label:        "zurvok",
		Primary:      "available",
		Score:        86,
		Bucket:       "free",
		FreeSuffixes: []string{"com", "net"},
		SimilarCount: 0,
		CreatedAt:    now,
	}
	taken := &storage.Record{
		ID:           uuid.New(),
		RunID:        run,
		Rank:         2,
		Name:         "Apple",
		Label:        "apple",
		Primary:      "taken",
		Score:        -100,
		Bucket:       "discarded",
		FreeSuffixes: []string{},
		CreatedAt:    now,
	}
	older := &storage.Record{
		ID:           uuid.New(),
		RunID:        uuid.New(),
		Rank:         1,
		Name:         "Zurvok",
		Label:        "zurvok",
		Primary:      "unknown",
		FreeSuffixes: []string{},
		CreatedAt:    now.Add(-2 * time.Hour),
	}

	if err := storage.SaveAll(ctx, b, []*storage.Record{older, taken, rec}); err != nil {
		t.Fatalf("Failed to save records: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{RunID: run})
	if err != nil {
		t.Fatalf("Failed to query results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	got := results[0]
	if got.ID != rec.ID {
		t.Errorf("Expected ID %s, got %s", rec.ID, got.ID)
	}
	if got.RunID != rec.RunID {
		t.Errorf("Expected RunID %s, got %s", rec.RunID, got.RunID)
	}
	if got.Name != rec.Name {
		t.Errorf("Expected Name %s, got %s", rec.Name, got.Name)
	}
	if got.Primary != rec.Primary || got.Bucket != rec.Bucket {
		t.Errorf("Expected %s/%s, got %s/%s", rec.Primary, rec.Bucket, got.Primary, got.Bucket)
	}
	if got.Score != rec.Score {
		t.Errorf("Expected Score %d, got %d", rec.Score, got.Score)
	}
	if len(got.FreeSuffixes) != 2 || got.FreeSuffixes[1] != "net" {
		t.Errorf("Expected FreeSuffixes %v, got %v", rec.FreeSuffixes, got.FreeSuffixes)
	}
	if got.CreatedAt.Unix() != rec.CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", rec.CreatedAt, got.CreatedAt)
	}
	if results[1].Label != "apple" {
		t.Errorf("Expected rank order within a run, got %s second", results[1].Label)
	}

	// Name matches any spelling of the label, newest first.
	byName, err := b.Query(ctx, storage.Filter{Name: "ZURVOK"})
	if err != nil {
		t.Fatalf("Failed to query by name: %v", err)
	}
	if len(byName) != 2 || byName[0].ID != rec.ID || byName[1].ID != older.ID {
		t.Fatalf("Unexpected name results %+v", byName)
	}

	// Test Since filter
	past := now.Add(-1 * time.Hour)
	resultsSince, err := b.Query(ctx, storage.Filter{Since: &past})
	if err != nil {
		t.Fatalf("Failed to query results with Since: %v", err)
	}
	if len(resultsSince) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resultsSince))
	}

	minScore := 0
	resultsMin, err := b.Query(ctx, storage.Filter{MinScore: &minScore})
	if err != nil {
		t.Fatalf("Failed to query results with MinScore: %v", err)
	}
	if len(resultsMin) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resultsMin))
	}

	page, err := b.Query(ctx, storage.Filter{Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query with Offset: %v", err)
	}
	if len(page) != 2 || page[0].ID != taken.ID {
		t.Fatalf("Unexpected page %+v", page)
	}
}
