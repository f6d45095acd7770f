package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments cache lookups and backend fetches.
type Metrics struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	fetches *prometheus.HistogramVec
}

// NewMetrics registers the query collectors against registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qcm_query_cache_hits_total",
		Help: "Query cache lookups served without a backend call.",
	}, []string{"entity", "source"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qcm_query_cache_miss_total",
		Help: "Query cache lookups that required a backend call.",
	}, []string{"entity"})
	fetches := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qcm_query_fetch_duration_seconds",
		Help:    "Duration of backend fetches issued by the query cache.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "status"})
	registerer.MustRegister(hits, misses, fetches)
	return &Metrics{hits: hits, misses: misses, fetches: fetches}
}

func (m *Metrics) hit(entity, source string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(entity, source).Inc()
}

func (m *Metrics) miss(entity string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(entity).Inc()
}

func (m *Metrics) fetched(entity string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.fetches.WithLabelValues(entity, status).Observe(d.Seconds())
}
