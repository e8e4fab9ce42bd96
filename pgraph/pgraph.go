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

// Package pgraph represents the internal "pointer graph" of shader nodes that
// the editor builds and the compiler reads.
package pgraph

import (
	"fmt"
	"sort"

	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/nodes"
	"github.com/purpleidea/shadergraph/util/errwrap"
)

// Graph is the graph structure in this library.
// The graph abstract data type (ADT) is defined as follows:
// * the directed graph arrows point from left to right ( -> )
// * the arrows point away from their dependencies (eg: arrows mean "before")
// * IOW, you might see uv -> extend -> preview (where uv is needed first)
// * each arrow connects one output socket to one input socket
type Graph struct {
	Name string

	adjacency map[*Vertex]map[*Vertex][]*Edge // *Vertex -> *Vertex (edges)
}

// Vertex is the primary vertex struct in this library.
type Vertex struct {
	*nodes.Node // anonymous field
}

// Edge connects an output socket of one vertex to an input socket of another.
type Edge struct {
	From   *Vertex
	Output string
	To     *Vertex
	Input  string
}

// NewGraph builds a new graph.
func NewGraph(name string) (*Graph, error) {
	if name == "" {
		return nil, fmt.Errorf("graph needs a name")
	}
	return &Graph{
		Name:      name,
		adjacency: make(map[*Vertex]map[*Vertex][]*Edge),
	}, nil
}

// NewVertex returns a new graph vertex struct with a contained node.
func NewVertex(node *nodes.Node) *Vertex {
	return &Vertex{
		Node: node,
	}
}

// String returns the canonical form for a vertex.
func (v *Vertex) String() string {
	return v.Node.String()
}

// String returns the canonical form for an edge.
func (e *Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.From.Name, e.Output, e.To.Name, e.Input)
}

// init lazily builds the adjacency map, so that the zero Graph is usable.
func (g *Graph) init() {
	if g.adjacency == nil {
		g.adjacency = make(map[*Vertex]map[*Vertex][]*Edge)
	}
}

// Copy makes a copy of the graph struct. The vertices and edges are shared,
// but the structure can be modified without affecting the original.
func (g *Graph) Copy() *Graph {
	newGraph := &Graph{
		Name:      g.Name,
		adjacency: make(map[*Vertex]map[*Vertex][]*Edge, len(g.adjacency)),
	}
	for k, v := range g.adjacency {
		m := make(map[*Vertex][]*Edge, len(v))
		for w, edges := range v {
			m[w] = append([]*Edge{}, edges...) // copy
		}
		newGraph.adjacency[k] = m
	}
	return newGraph
}

// GetName returns the name of the graph.
func (g *Graph) GetName() string {
	return g.Name
}

// SetName sets the name of the graph.
func (g *Graph) SetName(name string) {
	g.Name = name
}

// AddVertex uses variadic input to add all listed vertices to the graph.
func (g *Graph) AddVertex(xv ...*Vertex) {
	g.init()
	for _, v := range xv {
		if _, exists := g.adjacency[v]; !exists {
			g.adjacency[v] = make(map[*Vertex][]*Edge)
		}
	}
}

// DeleteVertex deletes a particular vertex from the graph, and any edges which
// touched it.
func (g *Graph) DeleteVertex(v *Vertex) {
	for _, e := range g.IncomingEdges(v) {
		g.DeleteEdge(e)
	}
	delete(g.adjacency, v)
}

// AddEdge connects the output socket of v1 to the input socket of v2. Both
// vertices are added if they aren't in the graph yet. An input socket accepts
// at most one edge, and both sockets must be declared by the node kinds.
func (g *Graph) AddEdge(v1 *Vertex, output string, v2 *Vertex, input string) (*Edge, error) {
	if v1 == nil || v2 == nil {
		return nil, fmt.Errorf("can't connect a nil vertex")
	}
	sig1 := v1.Signature()
	if sig1 == nil {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownKind, "vertex %s", v1)
	}
	canonical, err := sig1.Output(output)
	if err != nil {
		return nil, errwrap.Wrapf(err, "vertex %s", v1)
	}
	if canonical == "" { // sinks have nothing to connect
		return nil, errwrap.Wrapf(interfaces.ErrUnknownOutputSocket, "vertex %s has no outputs", v1)
	}
	sig2 := v2.Signature()
	if sig2 == nil {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownKind, "vertex %s", v2)
	}
	if sig2.Input(input) == nil {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownInputSocket, "vertex %s socket `%s`", v2, input)
	}
	if e := g.Incoming(v2, input); e != nil {
		return nil, fmt.Errorf("input %s.%s is already connected to %s.%s", v2.Name, input, e.From.Name, e.Output)
	}

	g.AddVertex(v1, v2) // supports adding N vertices now
	e := &Edge{
		From:   v1,
		Output: canonical,
		To:     v2,
		Input:  input,
	}
	g.adjacency[v1][v2] = append(g.adjacency[v1][v2], e)
	return e, nil
}

// DeleteEdge deletes a particular edge from the graph.
func (g *Graph) DeleteEdge(e *Edge) {
	for v1 := range g.adjacency {
		for v2, edges := range g.adjacency[v1] {
			keep := []*Edge{}
			for _, x := range edges {
				if x != e {
					keep = append(keep, x)
				}
			}
			g.adjacency[v1][v2] = keep
			if len(keep) == 0 {
				delete(g.adjacency[v1], v2)
			}
		}
	}
}

// HasVertex returns if the input vertex exists in the graph.
func (g *Graph) HasVertex(v *Vertex) bool {
	_, exists := g.adjacency[v]
	return exists
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int {
	return len(g.adjacency)
}

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int {
	count := 0
	for k := range g.adjacency {
		for _, edges := range g.adjacency[k] {
			count += len(edges)
		}
	}
	return count
}

// VertexSlice is a linear list of vertices. It can be sorted.
type VertexSlice []*Vertex

func (vs VertexSlice) Len() int           { return len(vs) }
func (vs VertexSlice) Swap(i, j int)      { vs[i], vs[j] = vs[j], vs[i] }
func (vs VertexSlice) Less(i, j int) bool { return vs[i].Name < vs[j].Name }

// Vertices returns a sorted slice of all vertices in the graph. The order is
// sorted by name to avoid the non-determinism in the map type.
func (g *Graph) Vertices() []*Vertex {
	vertices := []*Vertex{}
	for k := range g.adjacency {
		vertices = append(vertices, k)
	}
	sort.Sort(VertexSlice(vertices)) // add determinism
	return vertices
}

// VertexByName returns the vertex with that node name, or nil if not found.
func (g *Graph) VertexByName(name string) *Vertex {
	for v := range g.adjacency {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// String makes the graph pretty print.
func (g *Graph) String() string {
	return fmt.Sprintf("Vertices(%d), Edges(%d)", g.NumVertices(), g.NumEdges())
}

// sortEdges orders edges by their string form for determinism.
func sortEdges(edges []*Edge) []*Edge {
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].String() < edges[j].String()
	})
	return edges
}

// IncomingEdges returns all of the edges that point to vertex v (??? -> v).
func (g *Graph) IncomingEdges(v *Vertex) []*Edge {
	edges := []*Edge{}
	for v1 := range g.adjacency { // reverse paths
		edges = append(edges, g.adjacency[v1][v]...)
	}
	return sortEdges(edges)
}

// OutgoingEdges returns all of the edges that point from vertex v (v -> ???).
func (g *Graph) OutgoingEdges(v *Vertex) []*Edge {
	edges := []*Edge{}
	for _, x := range g.adjacency[v] { // forward paths
		edges = append(edges, x...)
	}
	return sortEdges(edges)
}

// Incoming returns the edge connected to the named input socket of v, or nil if
// that socket is not connected.
func (g *Graph) Incoming(v *Vertex, input string) *Edge {
	for v1 := range g.adjacency {
		for _, e := range g.adjacency[v1][v] {
			if e.Input == input {
				return e
			}
		}
	}
	return nil
}

// IncomingVertices returns the vertices that v directly depends on.
func (g *Graph) IncomingVertices(v *Vertex) []*Vertex {
	vertices := []*Vertex{}
	for v1 := range g.adjacency {
		if len(g.adjacency[v1][v]) > 0 {
			vertices = append(vertices, v1)
		}
	}
	sort.Sort(VertexSlice(vertices))
	return vertices
}

// Sinks returns the vertices which have no outgoing edges.
func (g *Graph) Sinks() []*Vertex {
	vertices := []*Vertex{}
	for _, v := range g.Vertices() {
		if len(g.adjacency[v]) == 0 {
			vertices = append(vertices, v)
		}
	}
	return vertices
}

// Ancestors returns every vertex that v transitively depends on, including v
// itself. It is a depth first search along the incoming edges, and it is safe
// to use on graphs that contain cycles.
func (g *Graph) Ancestors(v *Vertex) []*Vertex {
	var d []*Vertex // discovered
	var s []*Vertex // stack
	if !g.HasVertex(v) {
		return nil
	}
	seen := make(map[*Vertex]struct{})
	s = append(s, v)
	for len(s) > 0 {
		v, s = s[len(s)-1], s[:len(s)-1] // s.pop()

		if _, exists := seen[v]; !exists { // if not discovered
			seen[v] = struct{}{}
			d = append(d, v) // label as discovered

			s = append(s, g.IncomingVertices(v)...)
		}
	}
	return d
}

// FilterGraph builds a new graph containing only vertices from the list, and
// the edges between them. The original graph is not modified.
func (g *Graph) FilterGraph(name string, vertices []*Vertex) (*Graph, error) {
	if name == "" {
		return nil, fmt.Errorf("graph needs a name")
	}
	newGraph := g.Copy()
	newGraph.SetName(name)
	for _, v := range g.Vertices() {
		if !VertexContains(v, vertices) {
			newGraph.DeleteVertex(v)
		}
	}
	return newGraph, nil
}

// InDegree returns the count of vertices that point to me in one big lookup map.
func (g *Graph) InDegree() map[*Vertex]int {
	result := make(map[*Vertex]int)
	for k := range g.adjacency {
		result[k] = 0 // initialize
	}

	for k := range g.adjacency {
		for z := range g.adjacency[k] {
			result[z]++
		}
	}
	return result
}

// TopologicalSort returns the sort of graph vertices in that order.
// based on descriptions and code from wikipedia and rosetta code
func (g *Graph) TopologicalSort() ([]*Vertex, error) { // kahn's algorithm
	var L []*Vertex                    // empty list that will contain the sorted elements
	var S []*Vertex                    // set of all nodes with no incoming edges
	remaining := make(map[*Vertex]int) // amount of edges remaining

	indegree := g.InDegree()
	for _, v := range g.Vertices() {
		if d := indegree[v]; d == 0 {
			// accumulate set of all nodes with no incoming edges
			S = append(S, v)
		} else {
			// initialize remaining edge count from indegree
			remaining[v] = d
		}
	}

	for len(S) > 0 {
		last := len(S) - 1 // remove a node v from S
		v := S[last]
		S = S[:last]
		L = append(L, v) // add v to tail of L
		for n := range g.adjacency[v] {
			// for each node n remaining in the graph, consume from
			// remaining, so for remaining[n] > 0
			if remaining[n] > 0 {
				remaining[n]--         // remove edge from the graph
				if remaining[n] == 0 { // if n has no other incoming edges
					S = append(S, n) // insert n into S
				}
			}
		}
	}

	// if graph has edges, eg if any value in rem is > 0
	for _, in := range remaining {
		if in > 0 {
			return nil, errwrap.Wrapf(interfaces.ErrCyclicGraph, "not a dag")
		}
	}

	return L, nil
}

// VertexContains is an "in array" function to test for a vertex in a slice of
// vertices.
func VertexContains(needle *Vertex, haystack []*Vertex) bool {
	for _, v := range haystack {
		if needle == v {
			return true
		}
	}
	return false
}
