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

package lang

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/nodes"
	"github.com/purpleidea/shadergraph/pgraph"

	"github.com/google/uuid"
	"github.com/kylelemons/godebug/pretty"
)

type edge struct {
	from, output, to, input string
}

func buildGraph(t *testing.T, nodeList []*nodes.Node, edges []edge) *pgraph.Graph {
	t.Helper()
	g, err := pgraph.NewGraph("test")
	if err != nil {
		t.Fatalf("could not build graph: %+v", err)
	}
	for _, n := range nodeList {
		g.AddVertex(pgraph.NewVertex(n))
	}
	for _, e := range edges {
		if _, err := g.AddEdge(g.VertexByName(e.from), e.output, g.VertexByName(e.to), e.input); err != nil {
			t.Fatalf("could not add edge: %+v", err)
		}
	}
	return g
}

const header = `@group(1) @binding(1)
var texture: texture_2d<f32>;
@group(1) @binding(2)
var texture_sampler: sampler;

@fragment
fn fragment(
    #import bevy_pbr::mesh_vertex_output
) -> @location(0) vec4<f32> {
`

func TestCompile0(t *testing.T) {
	type test struct { // an individual test
		name   string
		nodes  []*nodes.Node
		edges  []edge
		root   string
		socket string
		fail   error
		exp    string // body only
	}
	testCases := []test{}

	testCases = append(testCases, test{
		name: "unconnected preview",
		nodes: []*nodes.Node{
			{Name: "p1", Kind: nodes.KindPreview},
		},
		root: "p1",
		exp:  "    return vec4<f32>(vec4<f32>(0.00000).xyz, 1.0);\n",
	})
	testCases = append(testCases, test{
		name: "uv extend preview",
		nodes: []*nodes.Node{
			{Name: "uv", Kind: nodes.KindUV},
			{Name: "e1", Kind: nodes.KindExtend, Amount: 0.5},
			{Name: "p1", Kind: nodes.KindPreview},
		},
		edges: []edge{
			{"uv", "uv", "e1", "value"},
			{"e1", "vec", "p1", "input"},
		},
		root: "p1",
		exp: "    let uv_extend = vec3<f32>(uv, 0.50000);\n" +
			"    return vec4<f32>(uv_extend, 1.0);\n",
	})
	testCases = append(testCases, test{
		name: "texture red channel",
		nodes: []*nodes.Node{
			{Name: "t1", Kind: nodes.KindTexture},
			{Name: "p1", Kind: nodes.KindPreview},
		},
		edges: []edge{
			{"t1", "r", "p1", "input"},
		},
		root: "p1",
		exp: "    let texture_color = textureSample(texture, texture_sampler, uv);\n" +
			"    let texture_color_r = texture_color.r;\n" +
			"    return vec4<f32>(vec3<f32>(texture_color_r, vec2<f32>(0.00000)), 1.0);\n",
	})
	testCases = append(testCases, test{
		name: "normal direct",
		nodes: []*nodes.Node{
			{Name: "n1", Kind: nodes.KindNormal},
			{Name: "p1", Kind: nodes.KindPreview},
		},
		edges: []edge{
			{"n1", "", "p1", "input"},
		},
		root: "p1",
		exp:  "    return vec4<f32>(world_normal, 1.0);\n",
	})
	testCases = append(testCases, test{
		name: "root socket by name",
		nodes: []*nodes.Node{
			{Name: "uv", Kind: nodes.KindUV},
		},
		root:   "uv",
		socket: "y",
		exp: "    let uv_y = uv.y;\n" +
			"    return vec4<f32>(vec3<f32>(uv_y, vec2<f32>(0.00000)), 1.0);\n",
	})
	testCases = append(testCases, test{
		name: "unknown root socket",
		nodes: []*nodes.Node{
			{Name: "uv", Kind: nodes.KindUV},
		},
		root:   "uv",
		socket: "w",
		fail:   interfaces.ErrUnknownOutputSocket,
	})
	testCases = append(testCases, test{
		name: "cycle",
		nodes: []*nodes.Node{
			{Name: "s1", Kind: nodes.KindSaturate},
			{Name: "s2", Kind: nodes.KindSaturate},
			{Name: "p1", Kind: nodes.KindPreview},
		},
		edges: []edge{
			{"s1", "", "s2", "value"},
			{"s2", "", "s1", "value"},
			{"s2", "", "p1", "input"},
		},
		root: "p1",
		fail: interfaces.ErrCyclicGraph,
	})

	names := map[string]struct{}{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if _, exists := names[tc.name]; exists {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names[tc.name] = struct{}{}

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			g := buildGraph(t, tc.nodes, tc.edges)
			result, err := Compile(g, g.VertexByName(tc.root), tc.socket, &Options{
				Logf: func(format string, v ...interface{}) {
					t.Logf("lang: "+format, v...)
				},
				Debug: testing.Verbose(),
			})
			if tc.fail != nil {
				if !errors.Is(err, tc.fail) {
					t.Errorf("test #%d: expected error %v, got: %v", index, tc.fail, err)
				}
				if result != nil {
					t.Errorf("test #%d: partial result returned", index)
				}
				return
			}
			if err != nil {
				t.Errorf("test #%d: compile failed: %+v", index, err)
				return
			}
			exp := header + tc.exp + "}\n"
			if result.Source != exp {
				t.Errorf("test #%d: source differs:\n%s", index, pretty.Compare(result.Source, exp))
			}
		})
	}
}

func TestCompileEvents(t *testing.T) {
	g := buildGraph(t, []*nodes.Node{
		{Name: "uv", Kind: nodes.KindUV},
		{Name: "e1", Kind: nodes.KindExtend, Amount: 0.5},
		{Name: "p1", Kind: nodes.KindPreview},
		{Name: "d1", Kind: nodes.KindPrint},
	}, []edge{
		{"uv", "", "e1", "value"},
		{"e1", "", "p1", "input"},
		{"p1", "", "d1", "output"},
	})

	seen := []string{}
	observer := interfaces.ObserverFunc(func(event *interfaces.DebugEvent) {
		seen = append(seen, event.Node)
	})
	result, err := Compile(g, g.VertexByName("d1"), "", &Options{Observer: observer})
	if err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	if _, err := uuid.Parse(result.ID); err != nil {
		t.Errorf("pass id is not a uuid: %s", result.ID)
	}
	if len(seen) != 1 || seen[0] != "d1" {
		t.Errorf("observer saw: %v", seen)
	}
	if i := len(result.Events); i != 1 {
		t.Fatalf("expected one event, got: %d", i)
	}
	if event := result.Events[0]; event.Pass != result.ID || event.Source != result.Source {
		t.Errorf("unexpected event: %+v", event)
	}
	if result.Statements != 1 {
		t.Errorf("expected one statement, got: %d", result.Statements)
	}
}

func TestCompileNoRoot(t *testing.T) {
	g, _ := pgraph.NewGraph("test")
	if _, err := Compile(g, nil, "", nil); err == nil {
		t.Errorf("expected an error without a root")
	}
	if _, err := Compile(nil, nil, "", nil); err == nil {
		t.Errorf("expected an error without a graph")
	}
}

func TestLangFreshPass(t *testing.T) {
	g := buildGraph(t, []*nodes.Node{
		{Name: "v1", Kind: nodes.KindVector},
	}, nil)

	obj := &Lang{
		Logf: func(format string, v ...interface{}) {
			t.Logf("lang: "+format, v...)
		},
	}
	if err := obj.Init(); err != nil {
		t.Fatalf("init failed: %+v", err)
	}
	if obj.Last() != nil {
		t.Errorf("expected no result yet")
	}
	r1, err := obj.Compile("", g, g.VertexByName("v1"), "")
	if err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	r2, err := obj.Compile("", g, g.VertexByName("v1"), "")
	if err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	// the counter and the names start over in every pass
	if r1.Source != r2.Source {
		t.Errorf("passes differ:\n%s", pretty.Compare(r1.Source, r2.Source))
	}
	if !strings.Contains(r2.Source, "let vec_0 = vec4<f32>(0.0, 0.0, 0.0, 0.0);") {
		t.Errorf("unexpected source:\n%s", r2.Source)
	}
	if r1.ID == r2.ID {
		t.Errorf("pass ids must differ")
	}
	if obj.Last() != r2 {
		t.Errorf("last result was not kept")
	}

	r3, err := obj.Compile("pass-3", g, g.VertexByName("v1"), "")
	if err != nil {
		t.Fatalf("compile failed: %+v", err)
	}
	if r3.ID != "pass-3" {
		t.Errorf("expected the given pass id, got: %s", r3.ID)
	}

	if _, err := obj.Compile("", g, g.VertexByName("v1"), "nope"); err == nil {
		t.Errorf("expected an error")
	}
	if obj.Last() != r3 {
		t.Errorf("a failure must not replace the last good result")
	}
}
