package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "randforest"

type Prometheus struct {
	TreesTrained    prometheus.Counter
	TrainDuration   prometheus.Histogram
	Classifications *prometheus.CounterVec
	Examples        prometheus.Gauge
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		TreesTrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trees_trained_total",
			Help:      "Trees grown by successful forest trainings.",
		}),
		TrainDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "train_duration_seconds",
			Help:      "Wall time of a full forest training.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classification requests by outcome.",
		}, []string{"outcome"}),
		Examples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "examples",
			Help:      "Training examples currently accumulated.",
		}),
	}
}

func (p Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.TreesTrained, p.TrainDuration, p.Classifications, p.Examples}
}

// Observer holds the process-wide collectors served on /metrics.
var Observer = NewPrometheusMetrics()

func init() {
	prometheus.MustRegister(Observer.Collectors()...)
}

const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeUntrained = "untrained"
)

func TrainingDone(trees int, took time.Duration) {
	Observer.TreesTrained.Add(float64(trees))
	Observer.TrainDuration.Observe(took.Seconds())
}

func Classified(outcome string) {
	Observer.Classifications.WithLabelValues(outcome).Inc()
}

func SetExamples(n int) {
	Observer.Examples.Set(float64(n))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
