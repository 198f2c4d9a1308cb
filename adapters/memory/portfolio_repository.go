// Package memory provides an in-process PortfolioRepository used when no
// database is configured, and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
	"goportfolio/ports"
)

type entry struct {
	portfolio portfolio.Portfolio
	specs     []evaluation.Spec
}

// PortfolioRepository keeps portfolios in a map guarded by a mutex
type PortfolioRepository struct {
	mu    sync.RWMutex
	items map[core.PortfolioID]*entry
}

var _ ports.PortfolioRepository = (*PortfolioRepository)(nil)

// NewPortfolioRepository creates an empty repository
func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{items: make(map[core.PortfolioID]*entry)}
}

func (r *PortfolioRepository) CreatePortfolio(ctx context.Context, p *portfolio.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; ok {
		return core.NewStructuralError("", "id", p.ID.String(), "portfolio already exists")
	}
	r.items[p.ID] = &entry{portfolio: clonePortfolio(*p)}
	return nil
}

func (r *PortfolioRepository) GetPortfolio(ctx context.Context, id core.PortfolioID) (*portfolio.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, core.NewNotFoundError("portfolio", id.String())
	}
	p := clonePortfolio(e.portfolio)
	return &p, nil
}

func (r *PortfolioRepository) ListPortfolios(ctx context.Context, limit, offset int) ([]*portfolio.Portfolio, error) {
	r.mu.RLock()
	all := make([]*portfolio.Portfolio, 0, len(r.items))
	for _, e := range r.items {
		p := clonePortfolio(e.portfolio)
		all = append(all, &p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Time().Equal(all[j].CreatedAt.Time()) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, id core.PortfolioID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return core.NewNotFoundError("portfolio", id.String())
	}
	delete(r.items, id)
	return nil
}

func (r *PortfolioRepository) AppendRecords(ctx context.Context, id core.PortfolioID, specs []evaluation.Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return core.NewNotFoundError("portfolio", id.String())
	}
	seen := make(map[core.ID]struct{}, len(e.specs))
	for _, s := range e.specs {
		seen[s.ID] = struct{}{}
	}
	for _, s := range specs {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		e.specs = append(e.specs, s)
	}
	e.portfolio.UpdatedAt = core.Now()
	return nil
}

func (r *PortfolioRepository) ListRecords(ctx context.Context, id core.PortfolioID) ([]evaluation.Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, core.NewNotFoundError("portfolio", id.String())
	}
	return append([]evaluation.Spec(nil), e.specs...), nil
}

func (r *PortfolioRepository) DeleteRecord(ctx context.Context, id core.PortfolioID, recordID core.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return core.NewNotFoundError("portfolio", id.String())
	}
	for i, s := range e.specs {
		if s.ID == recordID {
			e.specs = append(e.specs[:i], e.specs[i+1:]...)
			return nil
		}
	}
	return core.NewNotFoundError("evaluation record", recordID.String())
}

func clonePortfolio(p portfolio.Portfolio) portfolio.Portfolio {
	p.Projects = append([]string(nil), p.Projects...)
	p.Criteria = append([]string(nil), p.Criteria...)
	return p
}
