package portfolio

import (
	"testing"

	"goportfolio/domain/core"
	"goportfolio/domain/criterion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(" Q3 review ", []string{"A", "B"}, nil, 0.01)
	require.NoError(t, err)

	assert.Equal(t, "Q3 review", p.Name)
	assert.Equal(t, []string{criterion.DefaultCriterion}, p.Criteria)
	assert.Equal(t, 2, p.Dimensions())
	assert.False(t, p.ID.String() == "")

	space, err := p.Space()
	require.NoError(t, err)
	assert.False(t, space.Frozen())
	assert.Equal(t, 2, space.NumVariables())
}

func TestNew_Rejects(t *testing.T) {
	_, err := New("", []string{"A"}, nil, 0.01)
	assert.True(t, core.IsStructuralError(err))

	_, err = New("dup", []string{"A", "A"}, nil, 0.01)
	assert.True(t, core.IsStructuralError(err))
}
