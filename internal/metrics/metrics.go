// Package metrics holds the prometheus collectors of the tenancy pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "tenancy"

	labelOutcome = "outcome"
	labelCached  = "cached"
	labelStatus  = "status"
)

type TenancyMetrics struct {
	Resolutions *prometheus.CounterVec
	Activations *prometheus.HistogramVec
	Pools       prometheus.Gauge
	Requests    *prometheus.CounterVec
}

func New() *TenancyMetrics {
	return &TenancyMetrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Count of host resolutions by outcome",
		}, []string{labelOutcome, labelCached}),

		Activations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "activation_duration_seconds",
			Help:      "Histogram of times spent activating website databases",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 8),
		}, []string{labelOutcome}),

		Pools: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "pools_open",
			Help:      "Number of open website database pools",
		}),

		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of HTTP requests by status code",
		}, []string{labelStatus}),
	}
}

func (m *TenancyMetrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Resolutions,
		m.Activations,
		m.Pools,
		m.Requests,
	}
}

// Register adds every collector to reg.
func (m *TenancyMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.PrometheusCollectors() {
		err := reg.Register(c)
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *TenancyMetrics) ResolutionObserved(outcome string, cached bool) {
	m.Resolutions.WithLabelValues(outcome, strconv.FormatBool(cached)).Inc()
}

func (m *TenancyMetrics) ActivationObserved(outcome string, elapsed time.Duration) {
	m.Activations.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *TenancyMetrics) PoolsOpen(n int) {
	m.Pools.Set(float64(n))
}

func (m *TenancyMetrics) RequestServed(status int) {
	m.Requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler serves the collectors registered in gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
