package app

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heartmarshall/lexibuild/internal/dictionary"
)

// BuildMetrics holds the gauges describing one assembly run. They live in a
// private registry so the process-wide default registry stays untouched.
type BuildMetrics struct {
	registry  *prometheus.Registry
	entries   prometheus.Gauge
	wordforms prometheus.Gauge
	dropped   prometheus.Gauge
	duration  prometheus.Gauge
}

// NewBuildMetrics creates and registers the build gauges.
func NewBuildMetrics() *BuildMetrics {
	m := &BuildMetrics{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexibuild_entries",
			Help: "Number of lemma entries in the assembled dictionary.",
		}),
		wordforms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexibuild_wordforms",
			Help: "Number of wordforms in the assembled dictionary.",
		}),
		dropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexibuild_dropped",
			Help: "Number of items dropped for having no senses.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexibuild_build_duration_seconds",
			Help: "Wall time of the last assembly run.",
		}),
	}
	m.registry.MustRegister(m.entries, m.wordforms, m.dropped, m.duration)
	return m
}

// Observe records the outcome of an assembly run.
func (m *BuildMetrics) Observe(res dictionary.Result, elapsed time.Duration) {
	m.entries.Set(float64(res.Lemmas))
	m.wordforms.Set(float64(res.Wordforms))
	m.dropped.Set(float64(res.Dropped))
	m.duration.Set(elapsed.Seconds())
}

// WriteTextfile writes the gauges in the node exporter textfile format.
func (m *BuildMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
