// Package metrics counts store recovery events. It wraps Prometheus
// collectors registered on a private registry; a nil *Collector is valid
// and records nothing.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Store labels.
const (
	StoreUsers  = "users"
	StoreOrders = "orders"
)

// Collector provides store metrics collection.
type Collector struct {
	registry *prometheus.Registry

	recoveries      *prometheus.CounterVec
	recoveryLatency *prometheus.HistogramVec
	failovers       *prometheus.CounterVec
	opFailures      *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "diner"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.recoveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "recoveries_total",
			Help:      "Delete-and-rebuild recoveries of a store, by result.",
		},
		[]string{"store", "result"},
	)

	c.recoveryLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "recovery_duration_seconds",
			Help:      "Time taken to rebuild a store.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"store"},
	)

	c.failovers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "failovers_total",
			Help:      "Switches of a store to its in-memory fallback.",
		},
		[]string{"store"},
	)

	c.opFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_failures_total",
			Help:      "Store operations that ended in a failure value.",
		},
		[]string{"store", "op"},
	)

	c.registry.MustRegister(c.recoveries, c.recoveryLatency, c.failovers, c.opFailures)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordRecovery records the outcome of a rebuild.
func (c *Collector) RecordRecovery(store string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.recoveries.WithLabelValues(store, result).Inc()
	c.recoveryLatency.WithLabelValues(store).Observe(duration.Seconds())
}

// RecordFailover records a switch to the fallback store.
func (c *Collector) RecordFailover(store string) {
	if c == nil {
		return
	}
	c.failovers.WithLabelValues(store).Inc()
}

// RecordOperationFailure records an operation that returned a failure value.
func (c *Collector) RecordOperationFailure(store, op string) {
	if c == nil {
		return
	}
	c.opFailures.WithLabelValues(store, op).Inc()
}

// WriteText writes the current values in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil {
		return nil
	}
	mfs, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
