package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promptcanvas",
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "Total LLM calls by task and outcome",
	}, []string{"task", "outcome"})

	llmCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "promptcanvas",
		Subsystem: "llm",
		Name:      "call_latency_seconds",
		Help:      "LLM call latency including retries",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"task"})
)

// PromObserver records LLM call events as Prometheus metrics.
type PromObserver struct{}

func (PromObserver) OnCallComplete(event CallEvent) {
	outcome := "success"
	if !event.Success {
		outcome = "error:" + event.ErrorCode
	}
	llmCallsTotal.WithLabelValues(string(event.Task), outcome).Inc()
	llmCallLatency.WithLabelValues(string(event.Task)).Observe(float64(event.LatencyMs) / 1000)
}
