package framestats

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scenekit"

// Metrics holds the collectors shared by every scene's framestats instance.
type Metrics struct {
	Frames    *prometheus.CounterVec
	Delta     *prometheus.HistogramVec
	Lifecycle *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Collectors
// already registered on reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scene",
			Name:      "frames_total",
			Help:      "Number of frames stepped per scene.",
		}, []string{"scene"}),
		Delta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scene",
			Name:      "delta_ms",
			Help:      "Frame delta in milliseconds per scene.",
			Buckets:   []float64{4, 8, 16, 33, 50, 100, 250},
		}, []string{"scene"}),
		Lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scene",
			Name:      "lifecycle_events_total",
			Help:      "Number of non-frame lifecycle notifications per scene.",
		}, []string{"scene", "event"}),
	}

	var err error
	if m.Frames, err = register(reg, m.Frames); err != nil {
		return nil, err
	}
	if m.Delta, err = register(reg, m.Delta); err != nil {
		return nil, err
	}
	if m.Lifecycle, err = register(reg, m.Lifecycle); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// forget drops the series of a destroyed scene.
func (m *Metrics) forget(scene string) {
	m.Frames.DeleteLabelValues(scene)
	m.Delta.DeleteLabelValues(scene)
	m.Lifecycle.DeletePartialMatch(prometheus.Labels{"scene": scene})
}
