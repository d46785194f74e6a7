package chat

import "github.com/prometheus/client_golang/prometheus"

var modelCallDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "askdb_model_call_duration_seconds",
		Help:    "Model call duration in seconds, by operation and provider.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	},
	[]string{"op", "provider"},
)

func init() {
	prometheus.MustRegister(modelCallDurationSeconds)
}
