package validator

import (
	"github.com/FranksOps/namevet/internal/places"
	"github.com/FranksOps/namevet/internal/rdap"
)

// Candidate is the validation outcome for one name.
type Candidate struct {
	Name  string `json:"name"`
	Label string `json:"slug"`
	// Primary is the availability of the label under the primary suffix.
	Primary       rdap.Availability  `json:"primary_available"`
	PrimaryResult *rdap.DomainResult `json:"primary_result,omitempty"`
	// AllDomains holds the primary result followed by the other suffixes,
	// which are only checked when Primary is Available.
	AllDomains []rdap.DomainResult `json:"all_domains"`
	// AvailableDomains is the Available subset of AllDomains. It is empty
	// unless Primary is Available.
	AvailableDomains  []rdap.DomainResult    `json:"available_domains"`
	SimilarBusinesses []places.BusinessMatch `json:"similar_businesses"`
	Score             int                    `json:"score"`
	// Skipped marks names whose label was too short to check.
	Skipped bool `json:"skipped,omitempty"`
}

// Bucket groups candidates for reporting.
type Bucket string

const (
	BucketFree        Bucket = "free"
	BucketFreeSimilar Bucket = "free_similar"
	BucketDiscarded   Bucket = "discarded"
)

// FreeThreshold is the lowest score of a free name with no competition.
const FreeThreshold = 80

// Viable reports whether the candidate reached the expensive phase and kept a
// non-negative score.
func (c Candidate) Viable() bool {
	return c.Primary == rdap.Available && !c.Skipped && c.Score >= 0
}

// Bucket classifies the candidate.
func (c Candidate) Bucket() Bucket {
	switch {
	case !c.Viable():
		return BucketDiscarded
	case c.Score >= FreeThreshold:
		return BucketFree
	default:
		return BucketFreeSimilar
	}
}

// FreeDomains lists the available domain names.
func (c Candidate) FreeDomains() []string {
	out := make([]string, 0, len(c.AvailableDomains))
	for _, d := range c.AvailableDomains {
		out = append(out, d.Domain)
	}
	return out
}
