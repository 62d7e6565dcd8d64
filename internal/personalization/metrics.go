package personalization

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "promptcanvas",
	Subsystem: "personalization",
	Name:      "fallback_total",
	Help:      "Scoring runs that fell back to recipe defaults, by reason",
}, []string{"reason"})
