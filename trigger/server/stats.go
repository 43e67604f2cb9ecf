/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Stats exposes the server's request counters over /metrics.
type Stats struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	responses prometheus.Counter
	errors    prometheus.Counter
}

// NewStats builds a fresh, independently-registered counter set.
func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "polos_trigger_server_requests_total",
			Help: "Number of requests received, labeled by opcode.",
		}, []string{"opcode"}),
		responses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polos_trigger_server_responses_total",
			Help: "Number of replies sent.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polos_trigger_server_errors_total",
			Help: "Number of connections terminated by a protocol violation.",
		}),
	}
	s.registry.MustRegister(s.requests, s.responses, s.errors)
	return s
}

// IncRequest records one received opcode.
func (s *Stats) IncRequest(label string) { s.requests.WithLabelValues(label).Inc() }

// IncResponse records one reply sent.
func (s *Stats) IncResponse() { s.responses.Inc() }

// IncError records one protocol-violation termination.
func (s *Stats) IncError() { s.errors.Inc() }

// ServeMetrics blocks serving /metrics on addr until the process exits
// or the listener fails. Run it in its own goroutine.
func (s *Stats) ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	log.Infof("trigger server: metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil { //nolint:gosec
		return fmt.Errorf("server: metrics: %w", err)
	}
	return nil
}
