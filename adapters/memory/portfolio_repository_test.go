package memory

import (
	"context"
	"testing"

	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
	"goportfolio/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()

	p, err := portfolio.New("alpha", []string{"A", "B"}, nil, 0.01)
	require.NoError(t, err)
	require.NoError(t, repo.CreatePortfolio(ctx, p))
	assert.Error(t, repo.CreatePortfolio(ctx, p))

	got, err := repo.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
	got.Projects[0] = "mutated"

	again, err := repo.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, again.Projects)

	list, err := repo.ListPortfolios(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeletePortfolio(ctx, p.ID))
	_, err = repo.GetPortfolio(ctx, p.ID)
	assert.True(t, core.IsNotFoundError(err))
}

func TestPortfolioRepository_Records(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()
	p, err := portfolio.New("alpha", []string{"A", "B"}, nil, 0.01)
	require.NoError(t, err)
	require.NoError(t, repo.CreatePortfolio(ctx, p))

	first := testkit.Comparison("e1", "A", evaluation.OpGreater, "B").Spec()
	second := testkit.Range("e2", "A", 0, 1).Spec()

	require.NoError(t, repo.AppendRecords(ctx, p.ID, []evaluation.Spec{first, second}))
	require.NoError(t, repo.AppendRecords(ctx, p.ID, []evaluation.Spec{first}))

	specs, err := repo.ListRecords(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, first.ID, specs[0].ID)
	assert.Equal(t, second.ID, specs[1].ID)

	require.NoError(t, repo.DeleteRecord(ctx, p.ID, first.ID))
	assert.True(t, core.IsNotFoundError(repo.DeleteRecord(ctx, p.ID, first.ID)))

	specs, err = repo.ListRecords(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, specs, 1)

	assert.True(t, core.IsNotFoundError(repo.AppendRecords(ctx, "missing", []evaluation.Spec{first})))
}

func TestPortfolioRepository_ListPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository()
	for _, name := range []string{"a", "b", "c"} {
		p, err := portfolio.New(name, []string{"A"}, nil, 0.01)
		require.NoError(t, err)
		require.NoError(t, repo.CreatePortfolio(ctx, p))
	}

	page, err := repo.ListPortfolios(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.ListPortfolios(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	none, err := repo.ListPortfolios(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
