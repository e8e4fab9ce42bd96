// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package prometheus provides functions that are useful to control and manage
// the built-in prometheus metrics of the compiler.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// ResultOK labels a compile that produced a shader.
	ResultOK = "ok"

	// ResultError labels a compile that failed.
	ResultError = "error"
)

// Prometheus is the struct that contains information about the prometheus
// instance. Run Init() on it.
type Prometheus struct {
	registry *prometheus.Registry

	compileTotal            *prometheus.CounterVec // total of compiles that have been triggered
	compileStatements       prometheus.Gauge       // statements in the last good shader
	debugEventsTotal        prometheus.Counter     // total of debug sink emissions
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch
}

// Init creates and registers the metrics. Each instance has its own registry,
// so that more than one can exist in a process.
func (obj *Prometheus) Init() error {
	obj.registry = prometheus.NewRegistry()

	obj.compileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadergraph_compile_total",
			Help: "Number of compile passes that have run.",
		},
		// Labels for this metric.
		// result: ok or error
		[]string{"result"},
	)
	if err := obj.registry.Register(obj.compileTotal); err != nil {
		return err
	}

	obj.compileStatements = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadergraph_compile_statements",
			Help: "Number of statements in the last good shader.",
		},
	)
	if err := obj.registry.Register(obj.compileStatements); err != nil {
		return err
	}

	obj.debugEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shadergraph_debug_events_total",
			Help: "Number of debug sink emissions.",
		},
	)
	if err := obj.registry.Register(obj.debugEventsTotal); err != nil {
		return err
	}

	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadergraph_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)
	if err := obj.registry.Register(obj.processStartTimeSeconds); err != nil {
		return err
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// InitResultMetrics creates the labelled series up front, so that they are
// reported as zero before the first compile.
func (obj *Prometheus) InitResultMetrics() {
	for _, result := range []string{ResultOK, ResultError} {
		obj.compileTotal.With(prometheus.Labels{"result": result})
	}
}

// Gatherer returns the registry that holds the metrics.
func (obj *Prometheus) Gatherer() prometheus.Gatherer {
	return obj.registry
}

// Handler returns a http handler that responds to /metrics as prometheus would
// expect.
func (obj *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{})
}

// UpdateCompileTotal counts one compile pass.
func (obj *Prometheus) UpdateCompileTotal(ok bool) error {
	result := ResultError
	if ok {
		result = ResultOK
	}
	metric := obj.compileTotal.With(prometheus.Labels{"result": result})
	metric.Inc()
	return nil
}

// UpdateCompileStatements records the size of the last good shader.
func (obj *Prometheus) UpdateCompileStatements(count int) error {
	obj.compileStatements.Set(float64(count))
	return nil
}

// AddDebugEvents counts debug sink emissions.
func (obj *Prometheus) AddDebugEvents(count int) error {
	obj.debugEventsTotal.Add(float64(count))
	return nil
}
