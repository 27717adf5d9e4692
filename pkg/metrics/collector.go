// Copyright 2026 The Caddy Fleet Controller Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"caddy-fleet/pkg/events"
)

// Collector turns bus events into Prometheus metrics. It owns every metric
// it registers, so discarding the registry discards the metrics with it.
type Collector struct {
	ch <-chan events.Event

	operationsTotal   *prometheus.CounterVec
	operationDuration prometheus.Histogram
	probesTotal       *prometheus.CounterVec
	instanceHealthy   *prometheus.GaugeVec
	instancesTotal    prometheus.Gauge
	bulkAppliesTotal  *prometheus.CounterVec
	bulkDuration      prometheus.Histogram
}

// NewCollector creates a Collector, registers its metrics and subscribes to
// the bus. Subscribing here, not in Run, means events buffered before
// EventBus.Start are kept for the collector even when Run begins late.
//
// Parameters:
//   - registry: the Prometheus registry to register with (use prometheus.NewRegistry())
//   - bus: the event bus to observe
//
// Returns the Collector; call Run to start consuming events.
func NewCollector(registry prometheus.Registerer, bus *events.EventBus) *Collector {
	factory := promauto.With(registry)

	return &Collector{
		ch: bus.Subscribe(100),

		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_operations_total",
			Help: "Configuration operations by operation name and outcome",
		}, []string{"operation", "outcome"}),

		operationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleet_operation_duration_seconds",
			Help:    "Duration of single-instance configuration operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),

		probesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_probes_total",
			Help: "Reachability probes by outcome",
		}, []string{"outcome"}),

		instanceHealthy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleet_instance_healthy",
			Help: "Last observed reachability per instance (1 healthy, 0 unreachable)",
		}, []string{"instance_id"}),

		instancesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_instances_registered",
			Help: "Number of instances currently registered",
		}),

		bulkAppliesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_bulk_applies_total",
			Help: "Bulk fan-out operations by outcome",
		}, []string{"outcome"}),

		bulkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleet_bulk_apply_duration_seconds",
			Help:    "Duration of bulk fan-out operations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}),
	}
}

// Run consumes the subscription opened by NewCollector until ctx is
// cancelled.
func (c *Collector) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-c.ch:
			c.handle(event)
		}
	}
}

func (c *Collector) handle(event events.Event) {
	switch e := event.(type) {
	case *events.InstanceRegistered:
		c.instancesTotal.Inc()

	case *events.InstanceRemoved:
		c.instancesTotal.Dec()
		c.instanceHealthy.DeleteLabelValues(e.InstanceID)

	case *events.InstanceProbed:
		if e.Healthy {
			c.probesTotal.WithLabelValues("healthy").Inc()
			c.instanceHealthy.WithLabelValues(e.InstanceID).Set(1)
		} else {
			c.probesTotal.WithLabelValues("unreachable").Inc()
			c.instanceHealthy.WithLabelValues(e.InstanceID).Set(0)
		}

	case *events.OperationCompleted:
		outcome := "success"
		if !e.Success {
			outcome = e.ErrorCode
		}
		c.operationsTotal.WithLabelValues(e.Operation, outcome).Inc()
		c.operationDuration.Observe(e.Duration.Seconds())

	case *events.BulkApplyCompleted:
		outcome := "success"
		if !e.AllSucceeded {
			outcome = "partial"
		}
		c.bulkAppliesTotal.WithLabelValues(outcome).Inc()
		c.bulkDuration.Observe(e.Duration.Seconds())
	}
}
