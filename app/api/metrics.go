package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	items    prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "list_feed_requests_total",
			Help: "Feed requests by response status",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "list_feed_build_duration_seconds",
			Help:    "Time to fetch list statuses and make feed",
			Buckets: prometheus.DefBuckets,
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "list_feed_items",
			Help: "Number of items in the last served feed",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.items)
	return m
}

func (m *metrics) observe(status, items int, dur time.Duration) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	m.duration.Observe(dur.Seconds())
	if status == http.StatusOK {
		m.items.Set(float64(items))
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
