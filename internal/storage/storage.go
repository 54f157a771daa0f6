package storage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/namevet/internal/convergence"
	"github.com/FranksOps/namevet/internal/slug"
)

// Record is one validated candidate of a finished run.
type Record struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	Rank         int       `json:"rank"`
	Name         string    `json:"name"`
	Label        string    `json:"label"`
	Primary      string    `json:"primary"` // "available", "taken" or "unknown"
	Score        int       `json:"score"`
	Bucket       string    `json:"bucket"`
	FreeSuffixes []string  `json:"free_suffixes"`
	SimilarCount int       `json:"similar_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter allows querying for specific Records. Name matches on the derived
// label, so any spelling of a name finds it.
type Filter struct {
	RunID    uuid.UUID
	Name     string
	MinScore *int
	Since    *time.Time
	Limit    int
	Offset   int
}

// Backend defines the interface for storing and querying run records.
type Backend interface {
	Save(ctx context.Context, record *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}

// FromReport flattens a run report into records, one per candidate, in
// ranked order.
func FromReport(rep *convergence.Report) []*Record {
	if rep == nil {
		return nil
	}
	created := rep.FinishedAt.UTC()
	if rep.FinishedAt.IsZero() {
		created = time.Now().UTC()
	}

	out := make([]*Record, 0, len(rep.Candidates))
	for i, c := range rep.Candidates {
		free := make([]string, 0, len(c.AvailableDomains))
		for _, d := range c.AvailableDomains {
			free = append(free, d.Suffix)
		}
		out = append(out, &Record{
			ID:           uuid.New(),
			RunID:        rep.ID,
			Rank:         i + 1,
			Name:         c.Name,
			Label:        c.Label,
			Primary:      c.Primary.String(),
			Score:        c.Score,
			Bucket:       string(c.Bucket()),
			FreeSuffixes: free,
			SimilarCount: len(c.SimilarBusinesses),
			CreatedAt:    created,
		})
	}
	return out
}

// SaveAll saves records in order, stopping at the first error.
func SaveAll(ctx context.Context, b Backend, records []*Record) error {
	for _, r := range records {
		if err := b.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Label is the value Filter.Name is compared against.
func (f Filter) Label() string {
	if f.Name == "" {
		return ""
	}
	return slug.Normalize(f.Name)
}

// Match reports whether r passes the filter. Backends without a query engine
// use it together with Window.
func (f Filter) Match(r *Record) bool {
	if f.RunID != uuid.Nil && r.RunID != f.RunID {
		return false
	}
	if l := f.Label(); l != "" && r.Label != l {
		return false
	}
	if f.MinScore != nil && r.Score < *f.MinScore {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Window orders records newest first, by rank within a run, and applies
// Offset and Limit.
func (f Filter) Window(records []*Record) []*Record {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Rank < records[j].Rank
	})

	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*Record{}
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}
