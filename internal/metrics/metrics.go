// Copyright 2025 The SatQuest Authors
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

// Package metrics exposes SatQuest's Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satquest/satquest/internal/webhook"
)

// Metrics holds the collectors of one server instance.
type Metrics struct {
	registry   *prometheus.Registry
	deliveries *prometheus.CounterVec
	rewards    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry along with the standard Go
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satquest",
			Name:      "webhook_deliveries_total",
			Help:      "GitHub webhook deliveries by event and outcome.",
		}, []string{"event", "outcome"}),
		rewards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satquest",
			Name:      "reward_payments_total",
			Help:      "Bounty reward payments by result.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.deliveries,
		m.rewards,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordDelivery counts one webhook delivery.
func (m *Metrics) RecordDelivery(event string, outcome webhook.Outcome) {
	m.deliveries.WithLabelValues(event, string(outcome)).Inc()
}

// RecordReward counts one reward payment attempt.
func (m *Metrics) RecordReward(paid bool) {
	status := "paid"
	if !paid {
		status = "failed"
	}
	m.rewards.WithLabelValues(status).Inc()
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
