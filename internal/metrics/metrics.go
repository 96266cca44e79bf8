// Package metrics exposes build, cache and notification metrics through
// Prometheus.
package metrics

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

var (
	buildsTotal        *prometheus.CounterVec
	buildDuration      *prometheus.HistogramVec
	cacheLookupsTotal  *prometheus.CounterVec
	notificationsTotal prometheus.Counter
	documentsStored    prometheus.Counter
)

func MustRegisterMetrics(registerer prometheus.Registerer) {
	if err := RegisterMetrics(registerer); err != nil {
		panic(err)
	}
}

func RegisterMetrics(registerer prometheus.Registerer) error {
	return stderrors.Join(
		registerer.Register(buildsTotal),
		registerer.Register(buildDuration),
		registerer.Register(cacheLookupsTotal),
		registerer.Register(notificationsTotal),
		registerer.Register(documentsStored),
	)
}

func init() {
	buildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dorindex_builds_total",
			Help: "Document builds by record kind and outcome",
		},
		[]string{"kind", "outcome", "code"},
	)
	buildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dorindex_build_duration_seconds",
			Help:    "Duration of document builds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dorindex_cache_lookups_total",
			Help: "Related-object cache lookups by store and result",
		},
		[]string{"store", "result"},
	)
	notificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dorindex_notifications_total",
		Help: "Diagnostic notifications raised while building documents",
	})
	documentsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dorindex_documents_stored_total",
		Help: "Documents written to the document index",
	})
}

// Recorder feeds the package metrics. The zero value is ready to use.
type Recorder struct{}

// ObserveBuild records one document build.
func (Recorder) ObserveBuild(kind string, duration time.Duration, err error) {
	outcome, code := "success", ""
	if err != nil {
		outcome, code = "failure", errors.GetCode(err)
	}
	buildsTotal.WithLabelValues(kind, outcome, code).Inc()
	buildDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// CacheLookup records a hit or miss in a cache store.
func (Recorder) CacheLookup(store string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(store, result).Inc()
}

// Inc counts one notification.
func (Recorder) Inc() {
	notificationsTotal.Inc()
}

// DocumentsStored counts documents written to the index.
func (Recorder) DocumentsStored(n int) {
	documentsStored.Add(float64(n))
}
