package observability

import (
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the storefront BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	catalogQueries  *prometheus.CounterVec
	roleChanges     *prometheus.CounterVec
	adActivations   prometheus.Counter
	uploads         *prometheus.CounterVec
	uploadBytes     prometheus.Histogram
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_request_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_backend_errors_total",
				Help: "Total failed calls to the hosted backend.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		catalogQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_catalog_queries_total",
				Help: "Public catalog listings by filter mode.",
			},
			[]string{"mode"},
		),
		roleChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_role_changes_total",
				Help: "Permission ladder operations by outcome.",
			},
			[]string{"outcome"},
		),
		adActivations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_ad_activations_total",
				Help: "Ads saved as active (each one clears its slot).",
			},
		),
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_uploads_total",
				Help: "Compressed image uploads by kind.",
			},
			[]string{"kind"},
		),
		uploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storefront_upload_bytes",
				Help:    "Size of compressed uploads.",
				Buckets: prometheus.ExponentialBuckets(32*1024, 2, 8),
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrBackendError increments the backend error counter.
func (m *Metrics) IncrBackendError(service string) {
	m.backendErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrCatalogQuery counts a public listing. mode is all, category or search.
func (m *Metrics) IncrCatalogQuery(mode string) {
	m.catalogQueries.WithLabelValues(mode).Inc()
}

// IncrRoleChange counts a ladder outcome: promoted, revoked or rejected.
func (m *Metrics) IncrRoleChange(outcome string) {
	m.roleChanges.WithLabelValues(outcome).Inc()
}

// IncrAdActivation counts an ad saved as active.
func (m *Metrics) IncrAdActivation() {
	m.adActivations.Inc()
}

// RecordUpload counts one stored image and its final size.
func (m *Metrics) RecordUpload(kind string, size int) {
	m.uploads.WithLabelValues(kind).Inc()
	m.uploadBytes.Observe(float64(size))
}

// GetOperationsSnapshot summarises the counters for GET /v1/admin/metrics.
func (m *Metrics) GetOperationsSnapshot() *domain.OperationsSnapshot {
	hits := sumCounterVec(m.cacheHits)
	misses := sumCounterVec(m.cacheMisses)
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	promoted := getCounterValue(m.roleChanges, "promoted")
	revoked := getCounterValue(m.roleChanges, "revoked")

	return &domain.OperationsSnapshot{
		CatalogQueries: int64(sumCounterVec(m.catalogQueries)),
		RoleChanges:    int64(promoted + revoked),
		RoleRejections: int64(getCounterValue(m.roleChanges, "rejected")),
		AdActivations:  int64(counterValue(m.adActivations)),
		Uploads:        int64(sumCounterVec(m.uploads)),
		BackendErrors:  int64(sumCounterVec(m.backendErrors)),
		CacheHitRate:   hitRate,
		Period:         "since_start",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every label combination of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
