// Package metrics exposes the board's Prometheus metrics.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the per-cycle metrics. All methods are safe on a nil Collector, so
// tests and tools can run the engine without one.
type Collector struct {
	gatherer prometheus.Gatherer

	Cycles          *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	RecordsDropped  *prometheus.CounterVec
	TrackedObjects  prometheus.Gauge
	BucketObjects   *prometheus.GaugeVec
	StateSaveErrors prometheus.Counter
}

// NewCollector registers against reg, defaulting to the global registry when nil.
// Registering twice on the same registry hands back the existing metrics.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Cycles, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solari_cycles_total",
		Help: "Board cycles run, labeled by result (ok, fetch_failed).",
	}, []string{"result"})); err != nil {
		return nil, err
	}

	if c.CycleDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solari_cycle_duration_seconds",
		Help:    "Wall time of a board cycle, including the feed fetch.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})); err != nil {
		return nil, err
	}

	if c.RecordsDropped, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solari_records_dropped_total",
		Help: "Feed records rejected by the filter, labeled by reason.",
	}, []string{"reason"})); err != nil {
		return nil, err
	}

	if c.TrackedObjects, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solari_tracked_objects",
		Help: "Aircraft held in the track state after the last cycle.",
	})); err != nil {
		return nil, err
	}

	if c.BucketObjects, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solari_bucket_objects",
		Help: "Aircraft in each list after the last cycle, before truncation.",
	}, []string{"bucket"})); err != nil {
		return nil, err
	}

	if c.StateSaveErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solari_state_save_failures_total",
		Help: "Cycles whose track state could not be saved.",
	})); err != nil {
		return nil, err
	}

	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector already registered with incompatible type: %v", err)
		}
		return c, err
	}
	return c, nil
}

// Handler serves the registry this collector was registered on.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveCycle(result string, d time.Duration) {
	if c == nil {
		return
	}
	c.Cycles.WithLabelValues(result).Inc()
	c.CycleDuration.Observe(d.Seconds())
}

func (c *Collector) RecordDrop(reason string) {
	if c == nil {
		return
	}
	c.RecordsDropped.WithLabelValues(reason).Inc()
}

func (c *Collector) SetCounts(tracked, arrivals, departures int) {
	if c == nil {
		return
	}
	c.TrackedObjects.Set(float64(tracked))
	c.BucketObjects.WithLabelValues("arrivals").Set(float64(arrivals))
	c.BucketObjects.WithLabelValues("departures").Set(float64(departures))
}

func (c *Collector) SaveFailed() {
	if c == nil {
		return
	}
	c.StateSaveErrors.Inc()
}
