package evaluation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK        = "ok"
	statusError     = "error"
	statusUndefined = "undefined_metric"
)

// Metrics holds the Prometheus collectors of the harness
type Metrics struct {
	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	Items       prometheus.Counter
}

// NewMetrics creates and registers the harness collectors on reg. A nil registerer leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promoforecast_evaluation_runs_total",
				Help: "Number of strategy runs per model, window and outcome",
			},
			[]string{"model", "window", "status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promoforecast_evaluation_run_duration_seconds",
				Help:    "Time to fit and forecast one item window",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"model", "window"},
		),
		Items: factory.NewCounter(prometheus.CounterOpts{
			Name: "promoforecast_evaluation_items_total",
			Help: "Number of items evaluated",
		}),
	}
}
