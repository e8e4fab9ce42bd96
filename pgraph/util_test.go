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

package pgraph

import (
	"fmt"
	"testing"

	"github.com/purpleidea/shadergraph/lang/nodes"
)

// NV is a helper function to make testing easier. It creates a new vertex of
// the given kind.
func NV(name string, kind nodes.Kind) *Vertex {
	return NewVertex(&nodes.Node{Name: name, Kind: kind})
}

// NE is a helper function to make testing easier. It adds an edge and fails the
// test if that isn't possible.
func NE(t *testing.T, g *Graph, v1 *Vertex, output string, v2 *Vertex, input string) *Edge {
	t.Helper()
	e, err := g.AddEdge(v1, output, v2, input)
	if err != nil {
		t.Fatalf("could not add edge: %+v", err)
	}
	return e
}

func fullPrint(g *Graph) (str string) {
	str += "\n"
	for _, v := range g.Vertices() {
		str += fmt.Sprintf("* v: %s\n", v)
	}
	for _, v := range g.Vertices() {
		for _, e := range g.OutgoingEdges(v) {
			str += fmt.Sprintf("* e: %s\n", e)
		}
	}
	return
}
