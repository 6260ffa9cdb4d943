package progress

import "github.com/prometheus/client_golang/prometheus"

// metrics is the set of Prometheus collectors this server registers,
// grounded on cmd/go-judge/main.go's prometheus.MustRegister(prom) call
// but naming this core's own throughput and diagnostics-trigger signals
// instead of the executor's gRPC/HTTP request counts.
type metrics struct {
	submissionsJudged   prometheus.Counter
	judgeDuration       prometheus.Histogram
	diagnosticsTriggers prometheus.Counter
	activeSubscribers   prometheus.Gauge
}

func newMetrics(namespace string) *metrics {
	return &metrics{
		submissionsJudged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_judged_total",
			Help:      "Number of submissions the orchestrator has finished judging.",
		}),
		judgeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "judge_duration_seconds",
			Help:      "Wall-clock time to judge one submission, from Orchestrator.Run to its return.",
			Buckets:   prometheus.DefBuckets,
		}),
		diagnosticsTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_triggered_total",
			Help:      "Number of judge runs for which the diagnostics pass re-judged an eligible case.",
		}),
		activeSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_subscribers",
			Help:      "Number of currently-connected WebSocket progress subscribers.",
		}),
	}
}

// register attaches m's collectors to the default registerer, the same
// registry cmd/go-judge/main.go's prometheus.MustRegister(prom) uses. A
// process constructs exactly one Server; the test suite enforces that
// with a shared instance to avoid a duplicate-registration panic.
func (m *metrics) register() {
	prometheus.MustRegister(m.submissionsJudged, m.judgeDuration, m.diagnosticsTriggers, m.activeSubscribers)
}
