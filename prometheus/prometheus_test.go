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

package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestInitResultMetrics tests that we are initializing the Prometheus metrics
// correctly for all compile results.
func TestInitResultMetrics(t *testing.T) {
	var prom Prometheus
	if err := prom.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	prom.InitResultMetrics()

	// Get a list of metrics collected by Prometheus.
	// This is the only way to get Prometheus metrics
	// without implicitly creating them.
	metrics, err := prom.Gatherer().Gather()
	if err != nil {
		t.Errorf("error while gathering metrics: %s", err)
		return
	}

	// expectedMetrics is a map: keys are metrics name and
	// values are expected and actual count of metrics with
	// that name.
	expectedMetrics := map[string][2]int{
		"shadergraph_compile_total": {
			2, 0,
		},
		"shadergraph_compile_statements": {
			1, 0,
		},
		"shadergraph_debug_events_total": {
			1, 0,
		},
		"shadergraph_process_start_time_seconds": {
			1, 0,
		},
	}

	for _, metric := range metrics {
		for name, count := range expectedMetrics {
			if metric.GetName() == name {
				value := len(metric.Metric)
				expectedMetrics[name] = [2]int{count[0], value}
			}
		}
	}

	for name, count := range expectedMetrics {
		if count[1] != count[0] {
			t.Errorf("with: %s, expected %d metrics, got %d metrics", name, count[0], count[1])
		}
	}
}

func TestUpdate(t *testing.T) {
	var prom Prometheus
	if err := prom.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	// a second instance must not collide
	var other Prometheus
	if err := other.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}

	prom.UpdateCompileTotal(true)
	prom.UpdateCompileTotal(true)
	prom.UpdateCompileTotal(false)
	prom.UpdateCompileStatements(7)
	prom.AddDebugEvents(3)

	if v := testutil.ToFloat64(prom.compileTotal.WithLabelValues(ResultOK)); v != 2 {
		t.Errorf("expected 2 ok compiles, got: %v", v)
	}
	if v := testutil.ToFloat64(prom.compileTotal.WithLabelValues(ResultError)); v != 1 {
		t.Errorf("expected 1 failed compile, got: %v", v)
	}
	if v := testutil.ToFloat64(prom.compileStatements); v != 7 {
		t.Errorf("expected 7 statements, got: %v", v)
	}
	if v := testutil.ToFloat64(prom.debugEventsTotal); v != 3 {
		t.Errorf("expected 3 events, got: %v", v)
	}
	if v := testutil.ToFloat64(other.debugEventsTotal); v != 0 {
		t.Errorf("instances share state: %v", v)
	}
}

func TestHandler(t *testing.T) {
	var prom Prometheus
	if err := prom.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	prom.UpdateCompileTotal(true)

	w := httptest.NewRecorder()
	prom.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Result().Body)
	if !strings.Contains(string(body), `shadergraph_compile_total{result="ok"} 1`) {
		t.Errorf("unexpected metrics output:\n%s", body)
	}
}
