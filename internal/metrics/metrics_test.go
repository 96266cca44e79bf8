package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))

	// Registering twice fails for every collector.
	assert.Error(t, RegisterMetrics(reg))
}

func TestRecorder_ObserveBuild(t *testing.T) {
	var r Recorder
	before := testutil.ToFloat64(buildsTotal.WithLabelValues("item", "failure", errors.ErrCodeIndexFailed))

	r.ObserveBuild("item", 10*time.Millisecond, nil)
	r.ObserveBuild("item", 10*time.Millisecond, errors.New(errors.ErrCodeIndexFailed, "boom", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(buildsTotal.WithLabelValues("item", "failure", errors.ErrCodeIndexFailed)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(buildsTotal.WithLabelValues("item", "success", "")), 1.0)
}

func TestRecorder_CacheLookup(t *testing.T) {
	var r Recorder
	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("collections", "hit"))
	misses := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("collections", "miss"))

	r.CacheLookup("collections", true)
	r.CacheLookup("collections", false)
	r.CacheLookup("collections", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("collections", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("collections", "miss")))
}

func TestRecorder_Counters(t *testing.T) {
	var r Recorder
	notes := testutil.ToFloat64(notificationsTotal)
	stored := testutil.ToFloat64(documentsStored)

	r.Inc()
	r.DocumentsStored(5)

	assert.Equal(t, notes+1, testutil.ToFloat64(notificationsTotal))
	assert.Equal(t, stored+5, testutil.ToFloat64(documentsStored))
}
