package linepipe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments of a pipeline. A nil *Metrics records nothing.
type Metrics struct {
	ItemsProcessed    *prometheus.CounterVec
	ItemsDropped      *prometheus.CounterVec
	TransformDuration *prometheus.HistogramVec
	QueueDepth        *prometheus.GaugeVec
	LinesFed          prometheus.Counter
}

// NewMetrics creates the instruments and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ItemsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linepipe_stage_items_processed_total",
				Help: "Total number of lines transformed by a stage",
			},
			[]string{"stage"},
		),
		ItemsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linepipe_stage_items_dropped_total",
				Help: "Total number of lines a stage failed to transform or forward",
			},
			[]string{"stage"},
		),
		TransformDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linepipe_stage_transform_duration_seconds",
				Help:    "Time spent in a stage transform",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1, 10},
			},
			[]string{"stage"},
		),
		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "linepipe_stage_queue_depth",
				Help: "Number of lines waiting in a stage queue",
			},
			[]string{"stage"},
		),
		LinesFed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "linepipe_lines_fed_total",
				Help: "Total number of input lines placed into the first stage",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.ItemsProcessed, m.ItemsDropped, m.TransformDuration, m.QueueDepth, m.LinesFed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) processed(stage string, took time.Duration) {
	if m == nil {
		return
	}
	m.ItemsProcessed.WithLabelValues(stage).Inc()
	m.TransformDuration.WithLabelValues(stage).Observe(took.Seconds())
}

func (m *Metrics) dropped(stage string) {
	if m == nil {
		return
	}
	m.ItemsDropped.WithLabelValues(stage).Inc()
}

func (m *Metrics) depth(stage string, n int) {
	if m == nil {
		return
	}
	m.QueueDepth.WithLabelValues(stage).Set(float64(n))
}

func (m *Metrics) fed() {
	if m == nil {
		return
	}
	m.LinesFed.Inc()
}
