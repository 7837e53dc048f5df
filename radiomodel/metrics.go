// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package radiomodel

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus counters for propagation model evaluations.
// A nil *Collector is valid and records nothing.
type Collector struct {
	Queries  *prometheus.CounterVec
	Warnings *prometheus.CounterVec
	Errors   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector registers the propagation metrics against reg, defaulting to the global Prometheus
// registry when nil. Registering twice on the same registry returns the existing counters.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proploss_model_queries_total",
		Help: "Total number of model evaluations, labeled by model kind.",
	}, []string{"model"}), "proploss_model_queries_total")
	if err != nil {
		return nil, err
	}
	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proploss_model_warnings_total",
		Help: "Total number of accuracy warnings (near-field, validity range), labeled by model kind.",
	}, []string{"model"}), "proploss_model_warnings_total")
	if err != nil {
		return nil, err
	}
	errs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proploss_model_errors_total",
		Help: "Total number of failed model evaluations, labeled by model kind.",
	}, []string{"model"}), "proploss_model_errors_total")
	if err != nil {
		return nil, err
	}

	gatherer, _ := reg.(prometheus.Gatherer)
	return &Collector{
		Queries:  queries,
		Warnings: warnings,
		Errors:   errs,
		gatherer: gatherer,
	}, nil
}

// Handler exposes the registry the collector was registered on as a /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) onQuery(kind Kind) {
	if c == nil || c.Queries == nil {
		return
	}
	c.Queries.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) onWarning(kind Kind) {
	if c == nil || c.Warnings == nil {
		return
	}
	c.Warnings.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) onError(kind Kind) {
	if c == nil || c.Errors == nil {
		return
	}
	c.Errors.WithLabelValues(string(kind)).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
