package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for the suggestion pipeline.
type Metrics struct {
	suggestions *prometheus.CounterVec
	duration    prometheus.Histogram
	freeSlots   prometheus.Histogram
	tasks       *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew registers fresh collectors on reg and panics on duplicate registration.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slotapi",
				Name:      "suggestions_total",
				Help:      "Slot suggestions by outcome status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "slotapi",
				Name:      "suggestion_duration_seconds",
				Help:      "Time spent producing one suggestion, extraction included.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		freeSlots: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "slotapi",
				Name:      "free_slots",
				Help:      "Free slots found in the search window per suggestion.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "slotapi",
				Name:      "email_tasks_total",
				Help:      "Inbound email tasks processed by result.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.suggestions, m.duration, m.freeSlots, m.tasks)
	return m
}

func (m *Metrics) ObserveSuggestion(status string, elapsed time.Duration, freeSlots int) {
	if m == nil {
		return
	}
	m.suggestions.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
	if freeSlots >= 0 {
		m.freeSlots.Observe(float64(freeSlots))
	}
}

func (m *Metrics) ObserveTask(result string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(result).Inc()
}
