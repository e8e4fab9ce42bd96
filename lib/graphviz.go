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
	"github.com/purpleidea/shadergraph/util/errwrap"
	"github.com/purpleidea/shadergraph/yamlgraph"

	"github.com/spf13/afero"
)

// GraphvizConfig is the set of options of the graphviz command.
type GraphvizConfig struct {
	// Input is the path of the graph file.
	Input string `arg:"positional,required" help:"graph file (yaml) to draw"`

	// Output is the path of the dot file.
	Output string `arg:"--output,required,env:SHADERGRAPH_GRAPHVIZ" help:"output file for graphviz data"`

	// Filter is the graphviz program that renders a png next to the dot
	// file. Empty only writes the dot file.
	Filter string `arg:"--filter,env:SHADERGRAPH_GRAPHVIZ_FILTER" help:"graphviz filter to use, such as dot"`

	// Reachable only draws the nodes that the root depends on.
	Reachable bool `arg:"--reachable,env:SHADERGRAPH_GRAPHVIZ_REACHABLE" help:"only draw the nodes that reach the root"`
}

// Graphviz writes the graph file as graphviz data, and optionally renders it.
// A graph with a cycle gets a "(cyclic)" label.
func Graphviz(fs afero.Fs, config *GraphvizConfig) error {
	gconfig, err := yamlgraph.ParseFile(fs, config.Input)
	if err != nil {
		return err
	}
	graph, err := gconfig.NewGraphFromConfig()
	if err != nil {
		return err
	}
	if config.Reachable {
		root, _, err := gconfig.RootVertex(graph)
		if err != nil {
			return err
		}
		if graph, err = graph.FilterGraph(graph.GetName(), graph.Ancestors(root)); err != nil {
			return err
		}
	}
	if _, err := graph.TopologicalSort(); err != nil {
		graph.SetName(graph.GetName() + " (cyclic)")
	}
	if config.Filter == "" {
		return graph.WriteGraphviz(fs, config.Output)
	}
	// the filter runs on the real filesystem
	if err := graph.ExecGraphviz(config.Filter, config.Output); err != nil {
		return errwrap.Wrapf(err, "graphviz filter failed")
	}
	return nil
}
