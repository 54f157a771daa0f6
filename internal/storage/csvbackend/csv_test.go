package csvbackend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/namevet/internal/storage"
)

func TestCSVBackend(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "namevet.csv")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	run := uuid.New()

	older := &storage.Record{
		ID:           uuid.New(),
		RunID:        uuid.New(),
		Rank:         1,
		Name:         "Apple",
		Label:        "apple",
		Primary:      "taken",
		Score:        -100,
		Bucket:       "discarded",
		FreeSuffixes: []string{},
		CreatedAt:    now.Add(-2 * time.Hour),
	}
	second := &storage.Record{
		ID:           uuid.New(),
		RunID:        run,
		Rank:         2,
		Name:         "Kreluna, S.L.",
		Label:        "krelunasl",
		Primary:      "available",
		Score:        41,
		Bucket:       "free_similar",
		FreeSuffixes: []string{"com", "org"},
		SimilarCount: 1,
		CreatedAt:    now,
	}
	first := &storage.Record{
		ID:           uuid.New(),
		RunID:        run,
		Rank:         1,
		Name:         "Zúrvok",
		Label:        "zurvok",
		Primary:      "available",
		Score:        89,
		Bucket:       "free",
		FreeSuffixes: []string{"com", "net", "org", "biz"},
		CreatedAt:    now,
	}

	for _, r := range []*storage.Record{older, second, first} {
		if err := b.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save %s: %v", r.Label, err)
		}
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID || all[2].ID != older.ID {
		t.Errorf("Expected newest first, by rank within a run; got %s, %s, %s", all[0].Label, all[1].Label, all[2].Label)
	}

	got := all[1]
	if got.Name != second.Name {
		t.Errorf("Expected Name %q, got %q", second.Name, got.Name)
	}
	if got.RunID != run || got.Score != 41 || got.SimilarCount != 1 || got.Bucket != "free_similar" {
		t.Errorf("Unexpected record %+v", got)
	}
	if len(got.FreeSuffixes) != 2 || got.FreeSuffixes[1] != "org" {
		t.Errorf("Expected FreeSuffixes %v, got %v", second.FreeSuffixes, got.FreeSuffixes)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("Expected CreatedAt %v, got %v", now, got.CreatedAt)
	}

	byRun, err := b.Query(ctx, storage.Filter{RunID: run})
	if err != nil {
		t.Fatalf("Failed to query by run: %v", err)
	}
	if len(byRun) != 2 {
		t.Errorf("Expected 2 results for run, got %d", len(byRun))
	}

	byName, err := b.Query(ctx, storage.Filter{Name: "ZURVOK"})
	if err != nil {
		t.Fatalf("Failed to query by name: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != first.ID {
		t.Errorf("Expected zurvok by name, got %+v", byName)
	}

	past := now.Add(-1 * time.Hour)
	since, err := b.Query(ctx, storage.Filter{Since: &past})
	if err != nil {
		t.Fatalf("Failed to query with Since: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("Expected 2 results since, got %d", len(since))
	}

	page, err := b.Query(ctx, storage.Filter{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("Failed to query page: %v", err)
	}
	if len(page) != 1 || page[0].ID != second.ID {
		t.Errorf("Expected second record on page, got %+v", page)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	// Reopening appends to the same file.
	b, err = New(filePath)
	if err != nil {
		t.Fatalf("Failed to reopen CSV backend: %v", err)
	}
	defer b.Close()

	reopened, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query reopened: %v", err)
	}
	if len(reopened) != 3 {
		t.Errorf("Expected 3 results after reopen, got %d", len(reopened))
	}
}
