package output

import (
	"context"
	"fmt"
	"sync"

	"collectd.org/api"
	"github.com/prometheus/client_golang/prometheus"
)

// TextfileWriter mirrors dispatched gauges into a node_exporter textfile.
// The whole file is rewritten after every value list.
type TextfileWriter struct {
	path string

	mu       sync.Mutex
	registry *prometheus.Registry
	value    *prometheus.GaugeVec
	total    *prometheus.CounterVec
}

func NewTextfileWriter(path string) *TextfileWriter {
	w := &TextfileWriter{
		path:     path,
		registry: prometheus.NewRegistry(),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vantron_sensor_value",
			Help: "Last value dispatched by the vantron collectd plugin.",
		}, []string{"host", "plugin", "type"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vantron_dispatch_total",
			Help: "Number of value lists dispatched by the vantron collectd plugin.",
		}, []string{"plugin"}),
	}
	w.registry.MustRegister(w.value, w.total)
	return w
}

func (w *TextfileWriter) Write(ctx context.Context, vl *api.ValueList) error {
	if len(vl.Values) != 1 {
		return fmt.Errorf("textfile: %s has %d values, want 1", vl.Identifier, len(vl.Values))
	}
	g, ok := vl.Values[0].(api.Gauge)
	if !ok {
		return fmt.Errorf("textfile: %s is %s, want gauge", vl.Identifier, vl.Values[0].Type())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.value.WithLabelValues(vl.Host, vl.Plugin, vl.Type).Set(float64(g))
	w.total.WithLabelValues(vl.Plugin).Inc()

	if err := prometheus.WriteToTextfile(w.path, w.registry); err != nil {
		return fmt.Errorf("failed to write textfile %s: %w", w.path, err)
	}
	return nil
}

// Gatherer exposes the underlying registry.
func (w *TextfileWriter) Gatherer() prometheus.Gatherer {
	return w.registry
}
