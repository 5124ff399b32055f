// Package metrics exposes Prometheus instrumentation for the HTTP surface and
// the record query engine. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "myoffice"

// Metrics holds every collector of the service.
type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryMatched  *prometheus.HistogramVec
	loads         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Query passes run per entity",
		}, []string{"entity"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent in one query pass",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"entity"}),
		queryMatched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_matched_records",
			Help:      "Records matching the criteria of one query pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"entity"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_loads_total",
			Help:      "Collection loads by entity and result",
		}, []string{"entity", "result"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.queries, m.queryDuration, m.queryMatched, m.loads)
	return m
}

// Middleware records request count and latency labelled by route template,
// so /records/:id does not explode into one series per id.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveQuery records one query pass over entity.
func (m *Metrics) ObserveQuery(entity string, took time.Duration, matched int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(entity).Inc()
	m.queryDuration.WithLabelValues(entity).Observe(took.Seconds())
	m.queryMatched.WithLabelValues(entity).Observe(float64(matched))
}

// ObserveLoad records the outcome of loading entity's collection.
func (m *Metrics) ObserveLoad(entity string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.loads.WithLabelValues(entity, result).Inc()
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
