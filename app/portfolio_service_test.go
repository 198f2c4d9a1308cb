package app

import (
	"context"
	"testing"

	"goportfolio/adapters/memory"
	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/internal/errors"
	"goportfolio/internal/geometry"
	"goportfolio/internal/testkit"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"
	"goportfolio/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*PortfolioService, *memory.PortfolioRepository) {
	t.Helper()
	repo := memory.NewPortfolioRepository()
	cfg := ServiceConfig{Geometry: geometry.DefaultConfig(), DetectCycles: true}
	cfg.Geometry.Workers = 2
	return NewPortfolioService(repo, cfg, nil), repo
}

func unitSquare(t *testing.T, s *PortfolioService) core.PortfolioID {
	t.Helper()
	ctx := context.Background()
	p, err := s.CreatePortfolio(ctx, CreatePortfolioRequest{Name: "square", Projects: []string{"P1", "P2"}})
	require.NoError(t, err)

	_, box := testkit.UnitBox(2)
	specs := make([]evaluation.Spec, len(box))
	for i, rec := range box {
		specs[i] = rec.Spec()
	}
	_, err = s.AddEvaluations(ctx, p.ID, specs)
	require.NoError(t, err)
	return p.ID
}

func TestPortfolioService_CreateRejectsInvalid(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.CreatePortfolio(ctx, CreatePortfolioRequest{Name: "", Projects: []string{"A"}})
	assert.Equal(t, errors.CodeStructuralError, errors.GetCode(err))

	_, err = s.CreatePortfolio(ctx, CreatePortfolioRequest{Name: "dup", Projects: []string{"A", "A"}})
	assert.Error(t, err)

	_, err = s.CreatePortfolio(ctx, CreatePortfolioRequest{Name: "neg", Projects: []string{"A"}, Epsilon: -1})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPortfolioService_AddEvaluations(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()
	id := unitSquare(t, s)

	cmp := testkit.Comparison("alice", "P1", evaluation.OpGreater, "P2").Spec()
	res, err := s.AddEvaluations(ctx, id, []evaluation.Spec{cmp, cmp})
	require.NoError(t, err)
	assert.Equal(t, []core.ID{cmp.ID}, res.Accepted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 3, res.Total)

	stored, err := repo.ListRecords(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	bad := evaluation.Spec{EvaluatorID: "bob", Type: evaluation.TypeComparison, Projects: []string{"P1", "Z"}, Operator: evaluation.OpGreater}
	_, err = s.AddEvaluations(ctx, id, []evaluation.Spec{testkit.Range("bob", "P1", 0.2, 0.4).Spec(), bad})
	require.Error(t, err)
	assert.Equal(t, errors.CodeStructuralError, errors.GetCode(err))

	evals, err := s.Evaluations(ctx, id)
	require.NoError(t, err)
	assert.Len(t, evals, 3)
}

func TestPortfolioService_ReloadReproducesSystem(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()
	id := unitSquare(t, s)
	_, err := s.AddEvaluations(ctx, id, []evaluation.Spec{testkit.Comparison("alice", "P1", evaluation.OpGreater, "P2").Spec()})
	require.NoError(t, err)

	before, err := s.System(ctx, id)
	require.NoError(t, err)

	fresh := NewPortfolioService(repo, ServiceConfig{}, nil)
	after, err := fresh.System(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Hash, after.Hash)
	assert.Equal(t, before.Constraints, after.Constraints)
}

func TestPortfolioService_GeometryFollowsRecords(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	id := unitSquare(t, s)

	state, err := s.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, geometry.StateUnbuilt, state)

	vs, err := s.Vertices(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, vs.Len())

	rec := testkit.Comparison("alice", "P1", evaluation.OpGreaterEqual, "P2")
	_, err = s.AddEvaluations(ctx, id, []evaluation.Spec{rec.Spec()})
	require.NoError(t, err)

	state, err = s.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, geometry.StateStale, state)

	vs, err = s.Vertices(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, vs.Len())

	require.NoError(t, s.RemoveEvaluation(ctx, id, rec.ID()))
	props, err := s.Properties(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, props.NumVertices)

	proj, err := s.Project(ctx, id, []int{0, 1})
	require.NoError(t, err)
	assert.Len(t, proj.Points, 4)

	_, err = s.Project(ctx, id, []int{0})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPortfolioService_ValidateAndExports(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	id := unitSquare(t, s)
	_, err := s.AddEvaluations(ctx, id, []evaluation.Spec{
		testkit.Comparison("alice", "P1", evaluation.OpGreater, "P2").Spec(),
		testkit.Comparison("bob", "P2", evaluation.OpGreater, "P1").Spec(),
	})
	require.NoError(t, err)

	rep, err := s.Validate(ctx, id)
	require.NoError(t, err)
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, validator.CodePairwiseContradiction, rep.Warnings[0].Code)

	out, err := s.Export(ctx, id, "table")
	require.NoError(t, err)
	assert.Len(t, out.(translator.Table).Rows, 6)

	_, err = s.Export(ctx, id, "yaml")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	opt, err := s.Optimization(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, opt.Upper)

	in, err := s.Report(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "square", in.Title)
	assert.Equal(t, geometry.ReasonInfeasible, in.Vertices.Reason)
}

func TestPortfolioService_NotFound(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Vertices(ctx, "missing")
	assert.True(t, core.IsNotFoundError(err))

	id := unitSquare(t, s)
	require.NoError(t, s.DeletePortfolio(ctx, id))
	_, err = s.System(ctx, id)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

type recordingPublisher struct {
	events []ports.PortfolioEvent
}

func (r *recordingPublisher) Publish(e ports.PortfolioEvent) {
	r.events = append(r.events, e)
}

func TestPortfolioService_PublishesChanges(t *testing.T) {
	s, _ := newService(t)
	pub := &recordingPublisher{}
	s.SetEventPublisher(pub)
	ctx := context.Background()

	id := unitSquare(t, s)
	rec := testkit.Comparison("alice", "P1", evaluation.OpGreater, "P2")
	_, err := s.AddEvaluations(ctx, id, []evaluation.Spec{rec.Spec()})
	require.NoError(t, err)
	require.NoError(t, s.RemoveEvaluation(ctx, id, rec.ID()))
	require.NoError(t, s.DeletePortfolio(ctx, id))

	var types []string
	for _, e := range pub.events {
		types = append(types, e.EventType)
		assert.Equal(t, id, e.PortfolioID)
	}
	assert.Equal(t, []string{
		ports.EventEvaluationsAdded,
		ports.EventEvaluationsAdded,
		ports.EventEvaluationRemoved,
		ports.EventPortfolioDeleted,
	}, types)
}
