package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for a scraping run.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	PageDuration    prometheus.Histogram
	ContextsOpened  prometheus.Counter
	ContextsOpen    prometheus.Gauge
	ShelfRowsTotal  prometheus.Counter
	BooksTotal      prometheus.Counter
	DegradedTotal   *prometheus.CounterVec
	UnmappedRatings prometheus.Counter
	CacheHitsTotal  prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grshelves_pages_total",
			Help: "Pages loaded, by pipeline phase.",
		},
		[]string{"phase"},
	)
	pageDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grshelves_page_duration_seconds",
			Help:    "Time spent loading and reading one page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	opened := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grshelves_contexts_opened_total",
			Help: "Secondary browsing contexts opened.",
		},
	)
	open := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "grshelves_contexts_open",
			Help: "Secondary browsing contexts currently open.",
		},
	)
	rows := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grshelves_shelf_rows_total",
			Help: "Shelf rows extracted.",
		},
	)
	books := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grshelves_books_total",
			Help: "Book detail pages read.",
		},
	)
	degraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grshelves_degraded_total",
			Help: "Extraction blocks that failed and were recorded as missing, by block.",
		},
		[]string{"block"},
	)
	unmapped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grshelves_unmapped_ratings_total",
			Help: "Rating labels left unchanged by normalization.",
		},
	)
	hits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grshelves_detail_cache_hits_total",
			Help: "Book details served from the detail cache.",
		},
	)

	registry.MustRegister(pages, pageDuration, opened, open, rows, books, degraded, unmapped, hits)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		PageDuration:    pageDuration,
		ContextsOpened:  opened,
		ContextsOpen:    open,
		ShelfRowsTotal:  rows,
		BooksTotal:      books,
		DegradedTotal:   degraded,
		UnmappedRatings: unmapped,
		CacheHitsTotal:  hits,
	}
}

// IncPage counts one page load in phase.
func (m *Metrics) IncPage(phase string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records how long a page took.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.PageDuration.Observe(d.Seconds())
}

// ContextOpened records a secondary context being opened.
func (m *Metrics) ContextOpened() {
	if m == nil {
		return
	}
	m.ContextsOpened.Inc()
	m.ContextsOpen.Inc()
}

// ContextClosed records a secondary context being closed.
func (m *Metrics) ContextClosed() {
	if m == nil {
		return
	}
	m.ContextsOpen.Dec()
}

// AddRows counts extracted shelf rows.
func (m *Metrics) AddRows(n int) {
	if m == nil {
		return
	}
	m.ShelfRowsTotal.Add(float64(n))
}

// IncBooks counts one book detail page.
func (m *Metrics) IncBooks() {
	if m == nil {
		return
	}
	m.BooksTotal.Inc()
}

// IncDegraded counts a failed extraction block.
func (m *Metrics) IncDegraded(block string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(block).Inc()
}

// AddUnmapped counts rating labels outside the known set.
func (m *Metrics) AddUnmapped(n int) {
	if m == nil {
		return
	}
	m.UnmappedRatings.Add(float64(n))
}

// IncCacheHit counts a detail served from cache.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}
