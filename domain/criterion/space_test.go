package criterion

import (
	"testing"

	"goportfolio/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpace_DefaultCriterion(t *testing.T) {
	s, err := NewSpace([]string{"A", "B"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultCriterion}, s.Criteria())
	assert.Equal(t, 2, s.NumVariables())
}

func TestSpace_Index(t *testing.T) {
	s := MustSpace([]string{"A", "B", "C"}, []string{"cost", "benefit"})

	tests := []struct {
		project   string
		criterion string
		want      int
		ok        bool
	}{
		{"A", "cost", 0, true},
		{"A", "benefit", 1, true},
		{"B", "cost", 2, true},
		{"C", "benefit", 5, true},
		{"D", "cost", 0, false},
		{"A", "risk", 0, false},
	}

	for _, tt := range tests {
		got, ok := s.Index(tt.project, tt.criterion)
		assert.Equal(t, tt.ok, ok, "%s/%s", tt.project, tt.criterion)
		if tt.ok {
			assert.Equal(t, tt.want, got, "%s/%s", tt.project, tt.criterion)
			p, c, ok := s.Variable(got)
			require.True(t, ok)
			assert.Equal(t, tt.project, p)
			assert.Equal(t, tt.criterion, c)
		}
	}
}

func TestSpace_VariableNames(t *testing.T) {
	s := MustSpace([]string{"A", "B"}, []string{"cost", "benefit"})

	assert.Equal(t, []string{"A_cost", "A_benefit", "B_cost", "B_benefit"}, s.VariableNames())
}

func TestNewSpace_RejectsDuplicates(t *testing.T) {
	_, err := NewSpace([]string{"A", "A"}, nil)
	require.Error(t, err)
	assert.True(t, core.IsStructuralError(err))

	_, err = NewSpace([]string{"A"}, []string{"x", " "})
	require.Error(t, err)
}

func TestSpace_FrozenRejectsMutation(t *testing.T) {
	s := MustSpace([]string{"A"}, nil)
	require.NoError(t, s.AddProject("B"))

	s.Freeze()

	err := s.AddProject("C")
	require.Error(t, err)
	assert.True(t, core.IsIndexError(err))
	assert.Contains(t, err.Error(), "C")

	err = s.AddCriterion("risk")
	require.Error(t, err)
	assert.True(t, core.IsIndexError(err))

	assert.Equal(t, []string{"A", "B"}, s.Projects(), "rejected mutation must leave the space unchanged")
	assert.Equal(t, 1, s.NumCriteria())
}

func TestSpace_LayoutIsDetached(t *testing.T) {
	s := MustSpace([]string{"A"}, nil)
	layout := s.Layout()

	require.NoError(t, s.AddProject("B"))

	assert.Equal(t, []string{"A"}, layout.Projects)
	assert.Equal(t, 1, layout.Dimensions())
}
