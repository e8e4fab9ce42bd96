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

// Package yamlgraph provides the facilities for loading a shader graph from a
// yaml file.
package yamlgraph

import (
	"fmt"

	"github.com/purpleidea/shadergraph/lang/nodes"
	"github.com/purpleidea/shadergraph/pgraph"
	"github.com/purpleidea/shadergraph/util/errwrap"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Socket names one socket of one node. An empty socket is the default output
// when used as an edge source or a root.
type Socket struct {
	Node   string `yaml:"node"`
	Socket string `yaml:"socket"`
}

// String returns the canonical form of the socket.
func (obj *Socket) String() string {
	if obj.Socket == "" {
		return obj.Node
	}
	return fmt.Sprintf("%s.%s", obj.Node, obj.Socket)
}

// Edge is the data structure of an edge.
type Edge struct {
	From Socket `yaml:"from"`
	To   Socket `yaml:"to"`
}

// GraphConfig is the data structure that describes a single shader graph.
type GraphConfig struct {
	Graph string `yaml:"graph"`

	// Root is the output socket to compile. If it is nil, the first preview
	// node is used.
	Root *Socket `yaml:"root"`

	Nodes   []*nodes.Node `yaml:"nodes"`
	Edges   []Edge        `yaml:"edges"`
	Comment string        `yaml:"comment"`
}

// Parse parses a data stream into the graph structure.
func (c *GraphConfig) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	if c.Graph == "" {
		return fmt.Errorf("graph config: invalid graph")
	}
	return nil
}

// ParseFile reads and parses a graph file from the filesystem.
func ParseFile(fs afero.Fs, path string) (*GraphConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read `%s`", path)
	}
	config := &GraphConfig{}
	if err := config.Parse(data); err != nil {
		return nil, errwrap.Wrapf(err, "could not parse `%s`", path)
	}
	return config, nil
}

// Validate checks the structure of the config. Every problem found is
// reported, not just the first one.
func (c *GraphConfig) Validate() error {
	var reterr error
	lookup := make(map[string]*nodes.Node)
	for i, n := range c.Nodes {
		if n == nil {
			reterr = errwrap.Append(reterr, fmt.Errorf("node #%d is empty", i))
			continue
		}
		if err := n.Validate(); err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "node #%d", i))
			continue
		}
		if _, exists := lookup[n.Name]; exists {
			reterr = errwrap.Append(reterr, fmt.Errorf("duplicate node name `%s`", n.Name))
			continue
		}
		lookup[n.Name] = n
	}

	occupied := make(map[Socket]struct{})
	for i, e := range c.Edges {
		from, exists := lookup[e.From.Node]
		if !exists {
			reterr = errwrap.Append(reterr, fmt.Errorf("edge #%d: unknown node `%s`", i, e.From.Node))
		} else if _, err := from.Signature().Output(e.From.Socket); err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "edge #%d: node `%s`", i, e.From.Node))
		}
		to, exists := lookup[e.To.Node]
		if !exists {
			reterr = errwrap.Append(reterr, fmt.Errorf("edge #%d: unknown node `%s`", i, e.To.Node))
		} else if to.Signature().Input(e.To.Socket) == nil {
			reterr = errwrap.Append(reterr, fmt.Errorf("edge #%d: node `%s` has no input `%s`", i, e.To.Node, e.To.Socket))
		}
		if _, exists := occupied[e.To]; exists {
			reterr = errwrap.Append(reterr, fmt.Errorf("edge #%d: input %s is connected twice", i, e.To.String()))
		}
		occupied[e.To] = struct{}{}
	}

	if c.Root != nil {
		root, exists := lookup[c.Root.Node]
		if !exists {
			reterr = errwrap.Append(reterr, fmt.Errorf("root: unknown node `%s`", c.Root.Node))
		} else if _, err := root.Signature().Output(c.Root.Socket); err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "root: node `%s`", c.Root.Node))
		}
	}
	return reterr
}

// NewGraphFromConfig transforms a GraphConfig struct into a new graph. The
// config is validated first.
func (c *GraphConfig) NewGraphFromConfig() (*pgraph.Graph, error) {
	if err := c.Validate(); err != nil {
		return nil, errwrap.Wrapf(err, "invalid graph config")
	}

	graph, err := pgraph.NewGraph(c.Graph)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not run NewGraphFromConfig() properly")
	}

	lookup := make(map[string]*pgraph.Vertex)
	for _, n := range c.Nodes {
		node := *n // copy so the graph doesn't alias the config
		v := pgraph.NewVertex(&node)
		graph.AddVertex(v) // call standalone in case not part of an edge
		lookup[n.Name] = v
	}

	for i, e := range c.Edges {
		if _, err := graph.AddEdge(lookup[e.From.Node], e.From.Socket, lookup[e.To.Node], e.To.Socket); err != nil {
			return nil, errwrap.Wrapf(err, "could not add edge #%d", i)
		}
	}
	return graph, nil
}

// RootVertex returns the vertex and socket to compile. When the config doesn't
// name a root, the first preview node in file order is used.
func (c *GraphConfig) RootVertex(graph *pgraph.Graph) (*pgraph.Vertex, string, error) {
	if c.Root != nil {
		v := graph.VertexByName(c.Root.Node)
		if v == nil {
			return nil, "", fmt.Errorf("root node `%s` not found", c.Root.Node)
		}
		return v, c.Root.Socket, nil
	}
	for _, n := range c.Nodes {
		if n == nil || n.Kind != nodes.KindPreview {
			continue
		}
		if v := graph.VertexByName(n.Name); v != nil {
			return v, "", nil
		}
	}
	return nil, "", fmt.Errorf("no root given and no preview node found")
}
