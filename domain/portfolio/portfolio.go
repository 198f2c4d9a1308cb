// Package portfolio holds the persisted description of one candidate
// portfolio: its criterion space and translation settings.
package portfolio

import (
	"strings"

	"goportfolio/domain/core"
	"goportfolio/domain/criterion"
)

// Portfolio is the persisted aggregate root. Evaluation records are stored
// separately, in insertion order, under the portfolio id.
type Portfolio struct {
	ID          core.PortfolioID `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	Projects    []string         `json:"projects" db:"-"`
	Criteria    []string         `json:"criteria" db:"-"`
	Epsilon     float64          `json:"epsilon" db:"epsilon"`
	CreatedAt   core.Timestamp   `json:"created_at" db:"-"`
	UpdatedAt   core.Timestamp   `json:"updated_at" db:"-"`
}

// New validates the project and criterion lists and returns a portfolio
// with a fresh id.
func New(name string, projects, criteria []string, epsilon float64) (*Portfolio, error) {
	if strings.TrimSpace(name) == "" {
		return nil, core.NewStructuralError("", "name", name, "portfolio name is required")
	}
	space, err := criterion.NewSpace(projects, criteria)
	if err != nil {
		return nil, err
	}
	now := core.Now()
	return &Portfolio{
		ID:        core.NewPortfolioID(),
		Name:      strings.TrimSpace(name),
		Projects:  space.Projects(),
		Criteria:  space.Criteria(),
		Epsilon:   epsilon,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Space builds a fresh, unfrozen criterion space for the portfolio
func (p *Portfolio) Space() (*criterion.Space, error) {
	return criterion.NewSpace(p.Projects, p.Criteria)
}

// Dimensions returns n*m
func (p *Portfolio) Dimensions() int {
	return len(p.Projects) * len(p.Criteria)
}
