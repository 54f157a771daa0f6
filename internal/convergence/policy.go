// Package convergence drives validation rounds until at least one name is
// usable, asking a generator for one fresh batch when none is.
package convergence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/namevet/internal/metrics"
	"github.com/FranksOps/namevet/internal/slug"
	"github.com/FranksOps/namevet/internal/validator"
)

// ErrNoGenerator is returned by Run when it has no names to start from and no
// generator to ask.
var ErrNoGenerator = errors.New("convergence: no candidates and no generator")

// DefaultMaxEscalations bounds regeneration rounds.
const DefaultMaxEscalations = 1

// State is a step of the convergence loop.
type State int

const (
	AwaitingCandidates State = iota
	Validating
	Converged
	Escalating
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingCandidates:
		return "awaiting_candidates"
	case Validating:
		return "validating"
	case Converged:
		return "converged"
	case Escalating:
		return "escalating"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the final verdict of a run.
type Outcome string

const (
	// OutcomeConverged means at least one name has a free primary domain.
	OutcomeConverged Outcome = "converged"
	// OutcomeManualEntry means nothing usable was found and the user should
	// type a name themselves.
	OutcomeManualEntry Outcome = "manual_entry"
)

// Generator produces candidate names. discarded lists every name already
// rejected so a new batch can avoid them; it is empty for the first batch.
type Generator interface {
	Generate(ctx context.Context, discarded []string) ([]string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, discarded []string) ([]string, error)

func (f GeneratorFunc) Generate(ctx context.Context, discarded []string) ([]string, error) {
	return f(ctx, discarded)
}

// BatchValidator validates one batch. *validator.Validator implements it.
type BatchValidator interface {
	Validate(ctx context.Context, names []string) []validator.Candidate
}

var _ BatchValidator = (*validator.Validator)(nil)

// Transition records one state change.
type Transition struct {
	From  State `json:"from"`
	To    State `json:"to"`
	Round int   `json:"round"`
}

// Report is the result of a run. Candidates holds every round merged and
// ranked; Free, FreeSimilar and Discarded partition it.
type Report struct {
	ID          uuid.UUID             `json:"id"`
	Candidates  []validator.Candidate `json:"candidates"`
	Free        []validator.Candidate `json:"free"`
	FreeSimilar []validator.Candidate `json:"free_similar"`
	Discarded   []validator.Candidate `json:"discarded"`
	Rounds      int                   `json:"rounds"`
	Outcome     Outcome               `json:"outcome"`
	// Total counts the unique names analysed across rounds.
	Total       int          `json:"total"`
	Transitions []Transition `json:"transitions"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// Policy runs the loop. Validator is required; Generator is optional, and
// without one the loop ends after the first round.
type Policy struct {
	Validator BatchValidator
	Generator Generator
	// MaxEscalations caps regeneration rounds. Zero means
	// DefaultMaxEscalations; negative disables escalation.
	MaxEscalations int
	Logger         *slog.Logger
}

type run struct {
	p        *Policy
	logger   *slog.Logger
	report   *Report
	state    State
	batch    []string
	seen     map[string]struct{}
	escalate int
}

// Run validates names, escalating at most MaxEscalations times when no name
// survives. With no names it asks the generator for the first batch.
// Validation failures never fail the run; only a missing collaborator or a
// failing first generation does.
func (p *Policy) Run(ctx context.Context, names []string) (*Report, error) {
	if p.Validator == nil {
		return nil, errors.New("convergence: validator is required")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := p.MaxEscalations
	if limit == 0 {
		limit = DefaultMaxEscalations
	}

	r := &run{
		p:      p,
		logger: logger,
		report: &Report{
			ID:          uuid.New(),
			Candidates:  []validator.Candidate{},
			Transitions: []Transition{},
			StartedAt:   time.Now().UTC(),
		},
		state: AwaitingCandidates,
		batch: names,
		seen:  make(map[string]struct{}),
	}

	for r.state != Done {
		switch r.state {
		case AwaitingCandidates:
			if len(validator.Dedupe(r.batch)) == 0 {
				if p.Generator == nil {
					return nil, ErrNoGenerator
				}
				batch, err := p.Generator.Generate(ctx, nil)
				if err != nil {
					return nil, fmt.Errorf("convergence: generate: %w", err)
				}
				r.batch = batch
			}
			r.move(Validating)

		case Validating:
			r.validate(ctx)
			switch {
			case hasViable(r.report.Candidates):
				r.move(Converged)
			case r.escalate < limit:
				r.move(Escalating)
			default:
				r.report.Outcome = OutcomeManualEntry
				r.move(Done)
			}

		case Converged:
			r.report.Outcome = OutcomeConverged
			r.move(Done)

		case Escalating:
			r.escalate++
			metrics.EscalationsTotal.Inc()
			if r.regenerate(ctx) {
				r.move(Validating)
			} else {
				r.report.Outcome = OutcomeManualEntry
				r.move(Done)
			}
		}
	}

	r.partition()
	r.report.FinishedAt = time.Now().UTC()
	logger.Info("convergence finished",
		"run", r.report.ID,
		"outcome", r.report.Outcome,
		"rounds", r.report.Rounds,
		"total", r.report.Total,
		"free", len(r.report.Free),
		"free_similar", len(r.report.FreeSimilar),
	)
	return r.report, nil
}

func (r *run) move(to State) {
	r.report.Transitions = append(r.report.Transitions, Transition{
		From:  r.state,
		To:    to,
		Round: r.report.Rounds,
	})
	r.logger.Debug("convergence transition", "from", r.state, "to", to, "round", r.report.Rounds)
	r.state = to
}

// validate runs one round over the names not seen in earlier rounds and
// merges the results.
func (r *run) validate(ctx context.Context) {
	var fresh []string
	for _, n := range validator.Dedupe(r.batch) {
		key := slug.Key(n)
		if _, ok := r.seen[key]; ok {
			continue
		}
		r.seen[key] = struct{}{}
		fresh = append(fresh, n)
	}

	r.report.Rounds++
	r.report.Total += len(fresh)
	results := r.p.Validator.Validate(ctx, fresh)
	r.report.Candidates = append(r.report.Candidates, results...)
	validator.Rank(r.report.Candidates)
}

// regenerate asks for a fresh batch, passing every name tried so far. It
// reports whether the batch holds any name not already validated.
func (r *run) regenerate(ctx context.Context) bool {
	if r.p.Generator == nil {
		r.logger.Info("no candidate survived and no generator is configured")
		return false
	}

	discarded := make([]string, 0, len(r.report.Candidates))
	for _, c := range r.report.Candidates {
		discarded = append(discarded, c.Name)
	}
	r.logger.Info("no candidate survived, requesting a new batch",
		"run", r.report.ID,
		"discarded", len(discarded),
		"escalation", r.escalate,
	)

	batch, err := r.p.Generator.Generate(ctx, discarded)
	if err != nil {
		r.logger.Warn("generator failed", "run", r.report.ID, "err", err)
		return false
	}
	for _, n := range validator.Dedupe(batch) {
		if _, ok := r.seen[slug.Key(n)]; !ok {
			r.batch = batch
			return true
		}
	}
	r.logger.Warn("generator returned no new names", "run", r.report.ID)
	return false
}

func (r *run) partition() {
	rep := r.report
	rep.Free = []validator.Candidate{}
	rep.FreeSimilar = []validator.Candidate{}
	rep.Discarded = []validator.Candidate{}
	for _, c := range rep.Candidates {
		switch c.Bucket() {
		case validator.BucketFree:
			rep.Free = append(rep.Free, c)
		case validator.BucketFreeSimilar:
			rep.FreeSimilar = append(rep.FreeSimilar, c)
		default:
			rep.Discarded = append(rep.Discarded, c)
		}
	}
}

func hasViable(candidates []validator.Candidate) bool {
	for _, c := range candidates {
		if c.Viable() {
			return true
		}
	}
	return false
}
