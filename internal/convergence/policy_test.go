package convergence

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranksOps/namevet/internal/rdap"
	"github.com/FranksOps/namevet/internal/slug"
	"github.com/FranksOps/namevet/internal/validator"
)

// registry reports a fixed availability per label; unlisted labels are
// Unknown, as during an outage.
type registry struct {
	primary map[string]rdap.Availability
	calls   atomic.Int32
}

func (r *registry) CheckPrimarySuffix(_ context.Context, name string) *rdap.DomainResult {
	label := slug.Normalize(name)
	if !slug.Valid(label) {
		return nil
	}
	r.calls.Add(1)
	return &rdap.DomainResult{Domain: label + ".com", Suffix: "com", Available: r.primary[label]}
}

func (r *registry) CheckOtherSuffixes(_ context.Context, name string) []rdap.DomainResult {
	label := slug.Normalize(name)
	return []rdap.DomainResult{{Domain: label + ".net", Suffix: "net", Available: rdap.Available}}
}

type recorder struct {
	batches   [][]string
	discarded [][]string
	err       error
}

func (g *recorder) Generate(_ context.Context, discarded []string) ([]string, error) {
	g.discarded = append(g.discarded, discarded)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.batches) == 0 {
		return nil, nil
	}
	next := g.batches[0]
	g.batches = g.batches[1:]
	return next, nil
}

func newPolicy(t *testing.T, reg *registry, gen Generator) *Policy {
	t.Helper()
	v, err := validator.New(validator.Config{Domains: reg})
	require.NoError(t, err)
	return &Policy{Validator: v, Generator: gen}
}

func states(tr []Transition) []State {
	out := make([]State, 0, len(tr))
	for _, t := range tr {
		out = append(out, t.To)
	}
	return out
}

func TestRun_Converges(t *testing.T) {
	reg := &registry{primary: map[string]rdap.Availability{
		"zurvok": rdap.Available,
		"apple":  rdap.Taken,
	}}
	gen := &recorder{}
	p := newPolicy(t, reg, gen)

	rep, err := p.Run(context.Background(), []string{"Apple", "Zurvok", "Nimbrox"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeConverged, rep.Outcome)
	assert.Equal(t, 1, rep.Rounds)
	assert.Equal(t, 3, rep.Total)
	assert.Empty(t, gen.discarded, "generator must not be asked")
	assert.Equal(t, []State{Validating, Converged, Done}, states(rep.Transitions))

	require.Len(t, rep.Candidates, 3)
	assert.Equal(t, "Zurvok", rep.Candidates[0].Name)
	require.Len(t, rep.Free, 1)
	assert.Equal(t, "Zurvok", rep.Free[0].Name)
	assert.Empty(t, rep.FreeSimilar)
	assert.Len(t, rep.Discarded, 2)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rep.ID.String())
}

func TestRun_OutageEscalatesOnce(t *testing.T) {
	reg := &registry{}
	gen := &recorder{batches: [][]string{
		{"Delta", "Echo", "Foxtrot"},
		{"Golf"},
	}}
	p := newPolicy(t, reg, gen)

	rep, err := p.Run(context.Background(), []string{"Alfa", "Bravo", "Charlie"})
	require.NoError(t, err)

	require.Len(t, gen.discarded, 1, "exactly one escalation")
	assert.ElementsMatch(t, []string{"Alfa", "Bravo", "Charlie"}, gen.discarded[0])
	assert.EqualValues(t, 6, reg.calls.Load(), "no third batch")

	assert.Equal(t, OutcomeManualEntry, rep.Outcome)
	assert.Equal(t, 2, rep.Rounds)
	assert.Equal(t, 6, rep.Total)
	assert.Len(t, rep.Candidates, 6)
	assert.Len(t, rep.Discarded, 6)
	assert.Empty(t, rep.Free)
	assert.Empty(t, rep.FreeSimilar)
	for _, c := range rep.Candidates {
		assert.Equal(t, 0, c.Score)
		assert.Equal(t, rdap.Unknown, c.Primary)
	}
	assert.Equal(t,
		[]State{Validating, Escalating, Validating, Done},
		states(rep.Transitions))
}

func TestRun_EscalationFindsName(t *testing.T) {
	reg := &registry{primary: map[string]rdap.Availability{
		"apple":  rdap.Taken,
		"zurvok": rdap.Available,
	}}
	gen := &recorder{batches: [][]string{{"apple", "Zurvok"}}}
	p := newPolicy(t, reg, gen)

	rep, err := p.Run(context.Background(), []string{"Apple", "Bravo"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeConverged, rep.Outcome)
	assert.Equal(t, 2, rep.Rounds)
	require.Len(t, rep.Candidates, 3, "repeated names are not validated twice")
	assert.Equal(t, "Zurvok", rep.Candidates[0].Name)
	assert.Equal(t, "Bravo", rep.Candidates[1].Name)
	assert.Equal(t, "Apple", rep.Candidates[2].Name)
	assert.Equal(t,
		[]State{Validating, Escalating, Validating, Converged, Done},
		states(rep.Transitions))
}

func TestRun_GeneratorFailureMeansManualEntry(t *testing.T) {
	reg := &registry{primary: map[string]rdap.Availability{"apple": rdap.Taken}}
	gen := &recorder{err: errors.New("model unavailable")}
	p := newPolicy(t, reg, gen)

	rep, err := p.Run(context.Background(), []string{"Apple"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeManualEntry, rep.Outcome)
	assert.Equal(t, 1, rep.Rounds)
	require.Len(t, rep.Discarded, 1)
	assert.Equal(t, -100, rep.Discarded[0].Score)
}

func TestRun_GeneratorRepeatsOnly(t *testing.T) {
	reg := &registry{}
	gen := &recorder{batches: [][]string{{"ALFA", " alfa "}}}
	p := newPolicy(t, reg, gen)

	rep, err := p.Run(context.Background(), []string{"Alfa"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeManualEntry, rep.Outcome)
	assert.Equal(t, 1, rep.Rounds)
	assert.EqualValues(t, 1, reg.calls.Load())
}

func TestRun_NoGenerator(t *testing.T) {
	reg := &registry{}
	p := newPolicy(t, reg, nil)

	rep, err := p.Run(context.Background(), []string{"Alfa"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeManualEntry, rep.Outcome)
	assert.Equal(t, 1, rep.Rounds)

	_, err = p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoGenerator)
}

func TestRun_FirstBatchFromGenerator(t *testing.T) {
	reg := &registry{primary: map[string]rdap.Availability{"zurvok": rdap.Available}}
	gen := &recorder{batches: [][]string{{"Zurvok"}}}
	p := newPolicy(t, reg, gen)

	rep, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConverged, rep.Outcome)
	require.Len(t, gen.discarded, 1)
	assert.Empty(t, gen.discarded[0])
	assert.Equal(t,
		[]State{Validating, Converged, Done},
		states(rep.Transitions))

	gen = &recorder{err: errors.New("boom")}
	_, err = newPolicy(t, reg, gen).Run(context.Background(), []string{" "})
	assert.Error(t, err)
}

func TestRun_EscalationDisabled(t *testing.T) {
	reg := &registry{}
	gen := &recorder{batches: [][]string{{"Bravo"}}}
	p := newPolicy(t, reg, gen)
	p.MaxEscalations = -1

	rep, err := p.Run(context.Background(), []string{"Alfa"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeManualEntry, rep.Outcome)
	assert.Empty(t, gen.discarded)
}

func TestRun_RequiresValidator(t *testing.T) {
	_, err := (&Policy{}).Run(context.Background(), []string{"Alfa"})
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "escalating", Escalating.String())
	b, err := Done.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "done", string(b))
}
