package postgres

import (
	"context"
	"os"
	"testing"

	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
	"goportfolio/internal/migration"
	"goportfolio/internal/testkit"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping live test: TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestPortfolioRepository_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewPortfolioRepository(db)
	ctx := context.Background()

	p, err := portfolio.New("live", []string{"A", "B"}, []string{"value", "risk"}, 0.02)
	require.NoError(t, err)
	require.NoError(t, repo.CreatePortfolio(ctx, p))
	t.Cleanup(func() { _ = repo.DeletePortfolio(ctx, p.ID) })

	got, err := repo.GetPortfolio(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, []string{"A", "B"}, got.Projects)
	assert.Equal(t, []string{"value", "risk"}, got.Criteria)
	assert.Equal(t, 0.02, got.Epsilon)

	first := testkit.Comparison("alice", "A", evaluation.OpGreater, "B").Spec()
	second := testkit.Range("bob", "B", 0.2, 0.8).Spec()
	require.NoError(t, repo.AppendRecords(ctx, p.ID, []evaluation.Spec{first, second}))
	require.NoError(t, repo.AppendRecords(ctx, p.ID, []evaluation.Spec{first}))

	specs, err := repo.ListRecords(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, first.ID, specs[0].ID)
	assert.Equal(t, second.ID, specs[1].ID)
	assert.Equal(t, second.Values, specs[1].Values)

	require.NoError(t, repo.DeleteRecord(ctx, p.ID, first.ID))
	assert.True(t, core.IsNotFoundError(repo.DeleteRecord(ctx, p.ID, first.ID)))

	require.NoError(t, repo.DeletePortfolio(ctx, p.ID))
	_, err = repo.GetPortfolio(ctx, p.ID)
	assert.True(t, core.IsNotFoundError(err))
}

func TestPortfolioRepository_AppendToMissingPortfolio(t *testing.T) {
	db := openTestDB(t)
	repo := NewPortfolioRepository(db)

	spec := testkit.Comparison("alice", "A", evaluation.OpGreater, "B").Spec()
	err := repo.AppendRecords(context.Background(), core.NewPortfolioID(), []evaluation.Spec{spec})
	assert.True(t, core.IsNotFoundError(err))
}
