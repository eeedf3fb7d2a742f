package sim

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics exposes the simulator core's operational metrics,
// grounded on the teacher corpus's graph/metrics.go PrometheusMetrics. All
// updates happen on the single event-loop goroutine and take only the read
// lock, so mu never excludes one update from another; the Prometheus
// collectors themselves are safe to scrape while a simulation runs.
type PrometheusMetrics struct {
	mu sync.RWMutex

	queueDepth     prometheus.Gauge
	activeDevices  prometheus.Gauge
	taskLatency    *prometheus.HistogramVec
	flowsCompleted *prometheus.CounterVec
	iterations     prometheus.Counter
	schedulerAborts prometheus.Counter
}

// NewPrometheusMetrics registers the core's metric families with reg and
// returns a handle. Passing prometheus.DefaultRegisterer is the common case.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ffsim_queue_depth",
			Help: "Number of pending entries in the event list.",
		}),
		activeDevices: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ffsim_active_devices",
			Help: "Number of devices currently BUSY.",
		}),
		taskLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "ffsim_task_latency_ps",
			Help: "Task run-time in picoseconds, labeled by task kind.",
			Buckets: prometheus.ExponentialBuckets(1e6, 4, 12),
		}, []string{"kind"}),
		flowsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ffsim_flows_completed_total",
			Help: "Flow completions, labeled by collective algorithm.",
		}, []string{"algorithm"}),
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Name: "ffsim_iterations_total",
			Help: "Completed application iterations.",
		}),
		schedulerAborts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ffsim_scheduler_aborts_total",
			Help: "Fatal scheduler invariant violations.",
		}),
	}
}

func (m *PrometheusMetrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.queueDepth.Set(float64(n))
}

func (m *PrometheusMetrics) setActiveDevices(n int) {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.activeDevices.Set(float64(n))
}

func (m *PrometheusMetrics) observeTaskLatency(kind TaskKind, latency Time) {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.taskLatency.WithLabelValues(kind.String()).Observe(float64(latency))
}

func (m *PrometheusMetrics) incFlowsCompleted(algorithm string) {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.flowsCompleted.WithLabelValues(algorithm).Inc()
}

func (m *PrometheusMetrics) incIterations() {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.iterations.Inc()
}

func (m *PrometheusMetrics) incSchedulerAborts() {
	if m == nil {
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.schedulerAborts.Inc()
}
