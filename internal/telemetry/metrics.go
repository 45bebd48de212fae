package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — метрики запросов к Adafruit IO API.
// Реализует aio.Observer.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics создаёт метрики на собственном реестре (без глобального состояния).
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adafruit_cli_requests_total",
			Help: "Adafruit IO API calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adafruit_cli_request_duration_seconds",
			Help:    "Adafruit IO API call duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(m.requests, m.duration)
	return m
}

// ObserveRequest учитывает один вызов API.
func (m *Metrics) ObserveRequest(operation, outcome string, d time.Duration) {
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile записывает метрики в файл (атомарно, через rename).
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
