// Package validator ranks candidate business names.
//
// Validation runs in two phases. The cheap phase checks only the primary
// suffix of every candidate concurrently. The expensive phase runs only for
// candidates whose primary domain is free: it sweeps the remaining suffixes
// and searches the business directory at the same time, then scores.
package validator

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/FranksOps/namevet/internal/fanout"
	"github.com/FranksOps/namevet/internal/metrics"
	"github.com/FranksOps/namevet/internal/places"
	"github.com/FranksOps/namevet/internal/rdap"
	"github.com/FranksOps/namevet/internal/similarity"
	"github.com/FranksOps/namevet/internal/slug"
)

// DomainChecker is the registry side of validation. *rdap.Checker
// implements it.
type DomainChecker interface {
	CheckPrimarySuffix(ctx context.Context, name string) *rdap.DomainResult
	CheckOtherSuffixes(ctx context.Context, name string) []rdap.DomainResult
}

var _ DomainChecker = (*rdap.Checker)(nil)

// Config configures a Validator.
type Config struct {
	Domains DomainChecker
	// Directory defaults to places.Nop.
	Directory places.Searcher
	// Concurrency caps in-flight candidates per phase; 0 means no cap.
	Concurrency int
	Logger      *slog.Logger
}

// Validator validates batches of names. It keeps no state between calls.
type Validator struct {
	domains     DomainChecker
	directory   places.Searcher
	concurrency int
	logger      *slog.Logger
}

// New creates a Validator.
func New(cfg Config) (*Validator, error) {
	if cfg.Domains == nil {
		return nil, errors.New("validator: domain checker is required")
	}
	if cfg.Directory == nil {
		cfg.Directory = places.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Validator{
		domains:     cfg.Domains,
		directory:   cfg.Directory,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}, nil
}

// Validate deduplicates names, runs both phases and returns one Candidate per
// unique name sorted by descending score. Ties keep input order. An empty
// input yields an empty, non-nil slice.
func (v *Validator) Validate(ctx context.Context, names []string) []Candidate {
	candidates := v.CheckPrimary(ctx, Dedupe(names))
	v.Expand(ctx, candidates)

	for _, c := range candidates {
		metrics.RecordCandidate(string(c.Bucket()))
	}
	Rank(candidates)
	return candidates
}

// CheckPrimary runs the cheap phase. Each returned Candidate is final unless
// its primary domain is free, in which case Expand completes it.
func (v *Validator) CheckPrimary(ctx context.Context, names []string) []Candidate {
	out := make([]Candidate, len(names))
	errs := fanout.Each(ctx, len(names), v.concurrency, func(ctx context.Context, i int) {
		out[i] = v.primary(ctx, names[i])
	})
	for i, err := range errs {
		if err != nil {
			v.logger.Error("primary check panicked", "name", names[i], "err", err)
			out[i] = minimal(names[i], slug.Normalize(names[i]), nil)
		}
	}
	return out
}

func (v *Validator) primary(ctx context.Context, name string) Candidate {
	label := slug.Normalize(name)
	if !slug.Valid(label) {
		c := minimal(name, label, nil)
		c.Skipped = true
		return c
	}
	return minimal(name, label, v.domains.CheckPrimarySuffix(ctx, name))
}

func minimal(name, label string, res *rdap.DomainResult) Candidate {
	c := Candidate{
		Name:              name,
		Label:             label,
		AllDomains:        []rdap.DomainResult{},
		AvailableDomains:  []rdap.DomainResult{},
		SimilarBusinesses: []places.BusinessMatch{},
	}
	if res != nil {
		c.Primary = res.Available
		c.PrimaryResult = res
		c.AllDomains = append(c.AllDomains, *res)
	}
	c.Score = Score(c.Primary, 0, 0)
	return c
}

// Expand runs the expensive phase in place on every candidate whose primary
// domain is free. Other candidates are left untouched.
func (v *Validator) Expand(ctx context.Context, candidates []Candidate) {
	var idx []int
	for i, c := range candidates {
		if c.Primary == rdap.Available && !c.Skipped {
			idx = append(idx, i)
		}
	}
	errs := fanout.Each(ctx, len(idx), v.concurrency, func(ctx context.Context, i int) {
		v.expand(ctx, &candidates[idx[i]])
	})
	for i, err := range errs {
		if err != nil {
			c := &candidates[idx[i]]
			v.logger.Error("expansion panicked", "name", c.Name, "err", err)
			c.Score = Score(c.Primary, len(c.SimilarBusinesses), 0)
		}
	}
}

func (v *Validator) expand(ctx context.Context, c *Candidate) {
	var (
		others []rdap.DomainResult
		found  []places.BusinessMatch
	)
	errs := fanout.Each(ctx, 2, 0, func(ctx context.Context, i int) {
		switch i {
		case 0:
			others = v.domains.CheckOtherSuffixes(ctx, c.Name)
		case 1:
			found = v.directory.Search(ctx, c.Name, "")
		}
	})
	if errs[0] != nil || errs[1] != nil {
		v.logger.Warn("expansion failed, retrying suffix sweep", "name", c.Name, "err", errors.Join(errs...))
		others, found = nil, nil
		retry := fanout.Each(ctx, 1, 0, func(ctx context.Context, _ int) {
			others = v.domains.CheckOtherSuffixes(ctx, c.Name)
		})
		if retry[0] != nil {
			v.logger.Warn("suffix sweep retry failed", "name", c.Name, "err", retry[0])
			others = nil
		}
	}

	c.SimilarBusinesses = similarity.Filter(c.Name, found)

	otherFree := 0
	for _, d := range others {
		c.AllDomains = append(c.AllDomains, d)
		if d.Available == rdap.Available {
			otherFree++
		}
	}
	for _, d := range c.AllDomains {
		if d.Available == rdap.Available {
			c.AvailableDomains = append(c.AvailableDomains, d)
		}
	}
	c.Score = Score(c.Primary, len(c.SimilarBusinesses), otherFree)
}

// Score combines the signals for one candidate. A taken primary domain is a
// hard -100 and an unverified one a neutral 0, whatever the other inputs.
func Score(primary rdap.Availability, similarCount, otherFree int) int {
	switch primary {
	case rdap.Taken:
		return -100
	case rdap.Available:
	default:
		return 0
	}

	score := 50
	if similarCount == 0 {
		score += 30
	} else {
		score -= 15 * similarCount
	}
	return score + 3*otherFree
}

// Rank sorts candidates by descending score, keeping input order on ties.
func Rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

// Dedupe trims names and drops blanks and later duplicates, comparing case-
// and accent-insensitively. The first spelling seen is kept.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := slug.Key(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
