package ports

import (
	"context"

	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
)

// PortfolioRepository persists portfolios and their evaluation records.
// Records are returned in insertion order so a reloaded translator
// reproduces the same constraint rows.
type PortfolioRepository interface {
	CreatePortfolio(ctx context.Context, p *portfolio.Portfolio) error
	GetPortfolio(ctx context.Context, id core.PortfolioID) (*portfolio.Portfolio, error)
	ListPortfolios(ctx context.Context, limit, offset int) ([]*portfolio.Portfolio, error)
	DeletePortfolio(ctx context.Context, id core.PortfolioID) error

	AppendRecords(ctx context.Context, id core.PortfolioID, specs []evaluation.Spec) error
	ListRecords(ctx context.Context, id core.PortfolioID) ([]evaluation.Spec, error)
	DeleteRecord(ctx context.Context, id core.PortfolioID, recordID core.ID) error
}
