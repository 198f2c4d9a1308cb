package errors

import (
	stderrors "errors"
	"testing"

	"goportfolio/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestGetCode_ClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structural", core.NewStructuralError("r1", "values", nil, "bad"), CodeStructuralError},
		{"unknown project", core.NewUnknownProjectError("r1", "Z"), CodeStructuralError},
		{"index", core.NewFrozenSpaceError("project", "Z"), CodeIndexError},
		{"not found", core.NewNotFoundError("portfolio", "p1"), CodeNotFound},
		{"projection", core.NewProjectionError("need 2 or 3 dims"), CodeInvalidInput},
		{"plain", stderrors.New("boom"), CodeInternalError},
		{"app error", InvalidInput("bad format"), CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestWrap_KeepsCodeAndChain(t *testing.T) {
	cause := core.NewUnknownCriterionError("r1", "risk")
	err := Wrap(cause, "adding evaluation")

	assert.Equal(t, CodeStructuralError, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrUnknownCriterion))
	assert.Contains(t, err.Error(), "adding evaluation")
	assert.Contains(t, err.Error(), "risk")

	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, stderrors.New("connection refused"))

	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.True(t, IsAppError(err))
}
