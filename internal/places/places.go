// Package places searches a business directory for names that might compete
// with a candidate.
package places

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned by NewClient when no credential is configured.
// Search on such a client is a no-op rather than an error.
var ErrNoAPIKey = errors.New("places: no API key configured")

// BusinessMatch is one directory entry returned for a query.
type BusinessMatch struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount int      `json:"rating_count,omitempty"`
	Categories  []string `json:"categories"`
}

// Searcher looks up businesses by name and optional locality. Implementations
// never fail: on any problem they return an empty slice.
type Searcher interface {
	Search(ctx context.Context, name, locality string) []BusinessMatch
}

// Nop is a Searcher that never finds anything.
type Nop struct{}

func (Nop) Search(context.Context, string, string) []BusinessMatch { return []BusinessMatch{} }
