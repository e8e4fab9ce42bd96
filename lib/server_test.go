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

package lib

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sanity-io/litter"
	"github.com/spf13/afero"
)

func get(t *testing.T, handler http.Handler, path string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(w.Result().Body)
	if err != nil {
		t.Fatalf("read failed: %+v", err)
	}
	return w.Code, string(body)
}

func TestRouter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/graph.yaml", graphGood)

	obj := newMain(t, fs, &Config{Input: "/graph.yaml"})
	if err := obj.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	router := obj.Router()

	if code, _ := get(t, router, "/shader"); code != http.StatusServiceUnavailable {
		t.Errorf("expected no shader before the first compile, got: %d", code)
	}
	if code, _ := get(t, router, "/status"); code != http.StatusServiceUnavailable {
		t.Errorf("expected no status before the first compile, got: %d", code)
	}

	result, err := obj.Compile()
	if err != nil {
		t.Fatalf("compile failed: %+v", err)
	}

	code, body := get(t, router, "/shader")
	if code != http.StatusOK || body != sourceGood {
		t.Errorf("unexpected shader (%d):\n%s", code, body)
	}

	code, body = get(t, router, "/status")
	if code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", code)
	}
	var status struct {
		Program string  `json:"program"`
		Input   string  `json:"input"`
		Status  *Status `json:"status"`
	}
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("bad json: %+v", err)
	}
	if status.Program != "shadergraph" || status.Input != "/graph.yaml" {
		t.Errorf("unexpected status: %s", litter.Sdump(status))
	}
	if s := status.Status; s == nil || !s.OK || s.ID != result.ID || s.Statements != 1 {
		t.Errorf("unexpected status: %s", litter.Sdump(status))
	}

	code, body = get(t, router, "/debug")
	if code != http.StatusOK {
		t.Fatalf("unexpected debug code: %d", code)
	}
	var debug struct {
		Events []struct {
			Pass   string `json:"pass"`
			Node   string `json:"node"`
			Source string `json:"source"`
		} `json:"events"`
	}
	if err := json.Unmarshal([]byte(body), &debug); err != nil {
		t.Fatalf("bad json: %+v", err)
	}
	if len(debug.Events) != 1 || debug.Events[0].Node != "d1" || debug.Events[0].Pass != result.ID || debug.Events[0].Source != sourceGood {
		t.Errorf("unexpected debug events: %s", litter.Sdump(debug))
	}

	code, body = get(t, router, "/metrics")
	if code != http.StatusOK {
		t.Fatalf("unexpected metrics code: %d", code)
	}
	for _, s := range []string{
		`shadergraph_compile_total{result="ok"} 1`,
		`shadergraph_compile_total{result="error"} 0`,
		`shadergraph_compile_statements 1`,
		`shadergraph_debug_events_total 1`,
	} {
		if !strings.Contains(body, s) {
			t.Errorf("missing `%s` in metrics:\n%s", s, body)
		}
	}
}

func TestRouterAfterFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/graph.yaml", graphGood)

	obj := newMain(t, fs, &Config{Input: "/graph.yaml"})
	if err := obj.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	router := obj.Router()
	if _, err := obj.Compile(); err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	writeFile(t, fs, "/graph.yaml", "graph: g1\nnodes: [")
	if _, err := obj.Compile(); err == nil {
		t.Fatalf("expected a parse error")
	}

	if code, body := get(t, router, "/shader"); code != http.StatusOK || body != sourceGood {
		t.Errorf("last good shader is not served (%d):\n%s", code, body)
	}
	_, body := get(t, router, "/status")
	if !strings.Contains(body, `"ok":false`) || !strings.Contains(body, `"error":`) {
		t.Errorf("status doesn't show the failure: %s", body)
	}
	if _, body := get(t, router, "/metrics"); !strings.Contains(body, `shadergraph_compile_total{result="error"} 1`) {
		t.Errorf("failure was not counted:\n%s", body)
	}
}

func TestRouterValidationErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/graph.yaml", `
graph: g1
nodes:
- name: uv
  kind: uv
- name: uv
  kind: uv
- name: p1
  kind: preview
edges:
- from: {node: nope}
  to: {node: p1, socket: input}
`)

	obj := newMain(t, fs, &Config{Input: "/graph.yaml"})
	if err := obj.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	router := obj.Router()
	_, err := obj.Compile()
	if err == nil {
		t.Fatalf("expected validation errors")
	}

	code, body := get(t, router, "/status")
	if code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", code)
	}
	var status struct {
		Status *Status `json:"status"`
	}
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("bad json: %+v", err)
	}
	s := status.Status
	if s == nil || s.OK || s.ID == "" {
		t.Fatalf("unexpected status: %s", litter.Sdump(status))
	}
	if !strings.Contains(err.Error(), s.ID) {
		t.Errorf("pass id %s is missing from the error: %v", s.ID, err)
	}
	if i := len(s.Errors); i != 2 {
		t.Errorf("expected 2 separate errors, got %d: %s", i, litter.Sdump(s.Errors))
	}
}
