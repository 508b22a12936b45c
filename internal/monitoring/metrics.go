package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SheetFetchesTotal *prometheus.CounterVec
	CacheLookupsTotal *prometheus.CounterVec
	DroppedBooksTotal prometheus.Counter
	BooksRendered     *prometheus.GaugeVec
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// NewMetrics registers all metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SheetFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_sheet_fetches_total",
			Help: "The total number of sheet fetch attempts",
		}, []string{"category", "result"}), // result: 'ok', 'empty'
		CacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_cache_lookups_total",
			Help: "The total number of snapshot cache lookups",
		}, []string{"category", "result"}), // result: 'hit', 'miss'
		DroppedBooksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "site_dropped_books_total",
			Help: "The total number of book rows dropped for an unknown category",
		}),
		BooksRendered: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "site_books_rendered",
			Help: "Number of books rendered per section on the last page build",
		}, []string{"section"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncSheetFetch(category, result string) {
	m.SheetFetchesTotal.WithLabelValues(category, result).Inc()
}

func (m *Metrics) IncCacheLookup(category, result string) {
	m.CacheLookupsTotal.WithLabelValues(category, result).Inc()
}

func (m *Metrics) IncDroppedBook() {
	m.DroppedBooksTotal.Inc()
}
