package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goportfolio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_InMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Server.GinMode = "test"

	c, err := New(cfg)
	require.NoError(t, err)
	_, err = c.Router()
	assert.Error(t, err)

	require.NoError(t, c.InitInMemory())
	defer c.Shutdown(context.Background())

	router, err := c.Router()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGeometryConfig(t *testing.T) {
	gc := GeometryConfig(config.GeometryConfig{MaxDimensions: 8, Tolerance: 1e-6, SingularTolerance: 1e-8, MaxSubsets: 10, Timeout: time.Second, Workers: 3})

	assert.Equal(t, 8, gc.MaxDimensions)
	assert.Equal(t, 1e-6, gc.Tolerance)
	assert.Equal(t, int64(10), gc.MaxSubsets)
	assert.Equal(t, time.Second, gc.Timeout)
	assert.Equal(t, 3, gc.Workers)
}

func TestNew_RejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
