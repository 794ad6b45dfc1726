// Copyright 2025 The Real Router Authors
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

package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsRecorder publishes Prometheus counters/histograms for the event
// bus and transition engine. A nil *metricsRecorder (the default, no
// registerer configured) makes every method on it a no-op: callers
// invoke metrics unconditionally and rely on the nil receiver guards
// below rather than branching on "are metrics enabled" everywhere.
type metricsRecorder struct {
	transitionsTotal  *prometheus.CounterVec
	transitionSeconds prometheus.Histogram
	listenerCount     *prometheus.GaugeVec
	guardRejections   *prometheus.CounterVec

	mu sync.Mutex
}

// newMetricsRecorder registers the router's metric families with reg. A
// nil reg yields a nil *metricsRecorder, leaving metrics disabled.
func newMetricsRecorder(reg prometheus.Registerer) *metricsRecorder {
	if reg == nil {
		return nil
	}

	m := &metricsRecorder{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_transitions_total",
			Help: "Total number of completed transitions, by outcome.",
		}, []string{"outcome"}),
		transitionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "router_transition_duration_seconds",
			Help: "Transition duration in seconds, from navigate to commit.",
		}),
		listenerCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "router_listener_count",
			Help: "Current number of registered event listeners, by event.",
		}, []string{"event"}),
		guardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_guard_rejections_total",
			Help: "Total number of guard rejections, by guard kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.transitionsTotal, m.transitionSeconds, m.listenerCount, m.guardRejections)
	return m
}

// recordTransition records one completed transition's outcome and its
// wall-clock duration in seconds.
func (m *metricsRecorder) recordTransition(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionsTotal.WithLabelValues(outcome).Inc()
	m.transitionSeconds.Observe(seconds)
}

// setListenerCount publishes the live listener count for event.
func (m *metricsRecorder) setListenerCount(event string, count int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listenerCount.WithLabelValues(event).Set(float64(count))
}

// recordGuardRejection records one guard rejection of the given kind
// ("activate" or "deactivate").
func (m *metricsRecorder) recordGuardRejection(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guardRejections.WithLabelValues(kind).Inc()
}
