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
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/spf13/afero"
)

// Graphviz outputs the graph in graphviz format. Vertices and edges are sorted
// so that the output is stable between runs.
// https://en.wikipedia.org/wiki/DOT_%28graph_description_language%29
func (g *Graph) Graphviz() (out string) {
	//digraph "g" {
	//	label="g";
	//	node [shape=box];
	//	"uv" [label="uv[uv]"];
	//	"e1" [label="extend[e1]"];
	//	"uv" -> "e1" [label="uv -> value"];
	//}
	out += fmt.Sprintf("digraph %s {\n", strconv.Quote(g.GetName()))
	out += fmt.Sprintf("\tlabel=%s;\n", strconv.Quote(g.GetName()))
	out += "\tnode [shape=box];\n"
	str := ""
	for _, v1 := range g.Vertices() {
		name := strconv.Quote(v1.Name)
		label := v1.String()
		switch {
		case v1.Kind.IsSource():
			label += " (source)"
		case v1.Kind.IsSink():
			label += " (sink)"
		}
		out += fmt.Sprintf("\t%s [label=%s];\n", name, strconv.Quote(label))
		// use str for clearer output ordering
		for _, e := range g.OutgoingEdges(v1) {
			l := strconv.Quote(fmt.Sprintf("%s -> %s", e.Output, e.Input))
			str += fmt.Sprintf("\t%s -> %s [label=%s];\n", name, strconv.Quote(e.To.Name), l)
		}
	}
	out += str
	out += "}\n"
	return
}

// WriteGraphviz writes the graphviz data to a file on the given filesystem.
func (g *Graph) WriteGraphviz(fs afero.Fs, filename string) error {
	if filename == "" {
		return fmt.Errorf("no filename given")
	}
	if err := afero.WriteFile(fs, filename, []byte(g.Graphviz()), 0644); err != nil {
		return fmt.Errorf("error writing to filename")
	}
	return nil
}

// ExecGraphviz writes out the graphviz data and runs the correct graphviz
// filter command.
func (g *Graph) ExecGraphviz(program, filename string) error {

	switch program {
	case "dot", "neato", "twopi", "circo", "fdp":
	default:
		return fmt.Errorf("invalid graphviz program selected")
	}

	if err := g.WriteGraphviz(afero.NewOsFs(), filename); err != nil {
		return err
	}

	// run as a normal user if possible when run with sudo
	uid, err1 := strconv.Atoi(os.Getenv("SUDO_UID"))
	gid, err2 := strconv.Atoi(os.Getenv("SUDO_GID"))

	if err1 == nil && err2 == nil {
		if err := os.Chown(filename, uid, gid); err != nil {
			return fmt.Errorf("error changing file owner")
		}
	}

	path, err := exec.LookPath(program)
	if err != nil {
		return fmt.Errorf("the Graphviz program is missing")
	}

	out := fmt.Sprintf("%s.png", filename)
	cmd := exec.Command(path, "-Tpng", fmt.Sprintf("-o%s", out), filename)

	if err1 == nil && err2 == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
		cmd.SysProcAttr.Credential = &syscall.Credential{
			Uid: uint32(uid),
			Gid: uint32(gid),
		}
	}
	if _, err := cmd.Output(); err != nil {
		return fmt.Errorf("error writing to image")
	}
	return nil
}
