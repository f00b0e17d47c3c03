package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching Prometheus metrics.
var (
	// MatchRequestsTotal counts matching operations by outcome:
	// ok, fallback, no_topics, empty, error.
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "litswap",
			Name:      "match_requests_total",
			Help:      "Total matching operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// TopicStageTotal counts topic-extraction cascade stages by result:
	// hit, miss, error.
	TopicStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "litswap",
			Name:      "topic_stage_total",
			Help:      "Topic extraction cascade stage results",
		},
		[]string{"strategy", "result"},
	)
)

var matchMetricsRegistered bool

// RegisterMatchMetrics registers Prometheus matching metrics. Must be called once from main.
func RegisterMatchMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(MatchRequestsTotal)
	prometheus.MustRegister(TopicStageTotal)
	matchMetricsRegistered = true
}
