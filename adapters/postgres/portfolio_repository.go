package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
	"goportfolio/internal/errors"
	"goportfolio/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PortfolioRepositoryImpl implements PortfolioRepository for PostgreSQL
type PortfolioRepositoryImpl struct {
	db *sqlx.DB
}

// NewPortfolioRepository creates a new PostgreSQL portfolio repository
func NewPortfolioRepository(db *sqlx.DB) ports.PortfolioRepository {
	return &PortfolioRepositoryImpl{db: db}
}

type portfolioRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Projects    pq.StringArray `db:"projects"`
	Criteria    pq.StringArray `db:"criteria"`
	Epsilon     float64        `db:"epsilon"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r portfolioRow) toDomain() *portfolio.Portfolio {
	return &portfolio.Portfolio{
		ID:          core.PortfolioID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Projects:    []string(r.Projects),
		Criteria:    []string(r.Criteria),
		Epsilon:     r.Epsilon,
		CreatedAt:   core.NewTimestamp(r.CreatedAt),
		UpdatedAt:   core.NewTimestamp(r.UpdatedAt),
	}
}

const portfolioColumns = `id, name, description, projects, criteria, epsilon, created_at, updated_at`

// CreatePortfolio inserts a new portfolio
func (r *PortfolioRepositoryImpl) CreatePortfolio(ctx context.Context, p *portfolio.Portfolio) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolios (id, name, description, projects, criteria, epsilon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID.String(), p.Name, p.Description, pq.Array(p.Projects), pq.Array(p.Criteria), p.Epsilon,
		p.CreatedAt.Time(), p.UpdatedAt.Time())
	if err != nil {
		return errors.DatabaseError("failed to create portfolio", err)
	}
	return nil
}

// GetPortfolio retrieves a portfolio by id
func (r *PortfolioRepositoryImpl) GetPortfolio(ctx context.Context, id core.PortfolioID) (*portfolio.Portfolio, error) {
	var row portfolioRow
	err := r.db.GetContext(ctx, &row, `SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1`, id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("portfolio", id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get portfolio", err)
	}
	return row.toDomain(), nil
}

// ListPortfolios returns portfolios newest first
func (r *PortfolioRepositoryImpl) ListPortfolios(ctx context.Context, limit, offset int) ([]*portfolio.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios ORDER BY created_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	var rows []portfolioRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list portfolios", err)
	}

	out := make([]*portfolio.Portfolio, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// DeletePortfolio removes a portfolio and, by cascade, its records
func (r *PortfolioRepositoryImpl) DeletePortfolio(ctx context.Context, id core.PortfolioID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = $1`, id.String())
	if err != nil {
		return errors.DatabaseError("failed to delete portfolio", err)
	}
	return requireAffected(res, "portfolio", id.String())
}

// AppendRecords stores evaluation specs after any existing ones. A spec
// whose id is already stored for the portfolio is skipped.
func (r *PortfolioRepositoryImpl) AppendRecords(ctx context.Context, id core.PortfolioID, specs []evaluation.Spec) error {
	if len(specs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM portfolios WHERE id = $1)`, id.String()); err != nil {
		return errors.DatabaseError("failed to check portfolio", err)
	}
	if !exists {
		return core.NewNotFoundError("portfolio", id.String())
	}

	for _, spec := range specs {
		payload, err := json.Marshal(spec)
		if err != nil {
			return errors.Wrapf(err, "failed to encode record %s", spec.ID)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO evaluation_records (portfolio_id, id, evaluator_id, type, spec, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (portfolio_id, id) DO NOTHING
		`, id.String(), spec.ID.String(), spec.EvaluatorID, string(spec.Type), payload, spec.Timestamp.Time())
		if err != nil {
			return errors.DatabaseError("failed to insert evaluation record", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE portfolios SET updated_at = NOW() WHERE id = $1`, id.String()); err != nil {
		return errors.DatabaseError("failed to touch portfolio", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit evaluation records", err)
	}
	return nil
}

// ListRecords returns a portfolio's specs in insertion order
func (r *PortfolioRepositoryImpl) ListRecords(ctx context.Context, id core.PortfolioID) ([]evaluation.Spec, error) {
	var payloads [][]byte
	err := r.db.SelectContext(ctx, &payloads, `
		SELECT spec FROM evaluation_records
		WHERE portfolio_id = $1
		ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to list evaluation records", err)
	}

	specs := make([]evaluation.Spec, 0, len(payloads))
	for _, payload := range payloads {
		var spec evaluation.Spec
		if err := json.Unmarshal(payload, &spec); err != nil {
			return nil, errors.Wrap(err, "failed to decode evaluation record")
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// DeleteRecord removes one evaluation record
func (r *PortfolioRepositoryImpl) DeleteRecord(ctx context.Context, id core.PortfolioID, recordID core.ID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM evaluation_records WHERE portfolio_id = $1 AND id = $2
	`, id.String(), recordID.String())
	if err != nil {
		return errors.DatabaseError("failed to delete evaluation record", err)
	}
	return requireAffected(res, "evaluation record", recordID.String())
}

func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.DatabaseError("failed to read affected rows", err)
	}
	if n == 0 {
		return core.NewNotFoundError(resource, id)
	}
	return nil
}
