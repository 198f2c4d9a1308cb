package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCounters(t *testing.T) {
	accepted := recordsTotal.WithLabelValues("RANGE", "accepted")
	before := testutil.ToFloat64(accepted)

	RecordAccepted("RANGE")
	RecordAccepted("RANGE")
	RecordRejected("RANGE")

	assert.Equal(t, before+2, testutil.ToFloat64(accepted))
	assert.GreaterOrEqual(t, testutil.ToFloat64(recordsTotal.WithLabelValues("RANGE", "rejected")), 1.0)
}

func TestObserveEnumeration(t *testing.T) {
	before := testutil.CollectAndCount(enumerationDuration)
	ok := testutil.ToFloat64(EnumerationOutcomes.WithLabelValues("OK"))

	ObserveEnumeration(2, 6, 4, false, "", 3*time.Millisecond)
	ObserveEnumeration(2, 1, 0, true, "ENUMERATION_INCOMPLETE", time.Millisecond)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(enumerationDuration), before+1)
	assert.Equal(t, ok+1, testutil.ToFloat64(EnumerationOutcomes.WithLabelValues("OK")))
}

func TestWarningAndCache(t *testing.T) {
	Warning("PAIRWISE_CONTRADICTION")
	CacheHit()
	CacheRebuild()

	assert.GreaterOrEqual(t, testutil.ToFloat64(warningsTotal.WithLabelValues("PAIRWISE_CONTRADICTION")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(geometryCache.WithLabelValues("hit")), 1.0)
}
