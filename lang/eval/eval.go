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

// Package eval walks a shader node graph backwards from a requested output
// socket and resolves every node it reaches exactly once.
package eval

import (
	"fmt"

	"github.com/purpleidea/shadergraph/lang/expr"
	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/nodes"
	"github.com/purpleidea/shadergraph/pgraph"
)

// State is the progress of one output socket during a pass.
type State int

const (
	// Unvisited sockets haven't been requested yet.
	Unvisited State = iota

	// InProgress sockets are being resolved. Requesting one of these again
	// means the graph has a cycle.
	InProgress

	// Resolved sockets have a memoized value.
	Resolved

	// Failed sockets have a memoized error. Requesting one of these again
	// returns the same error.
	Failed
)

// key identifies one output socket of one vertex.
type key struct {
	vertex *pgraph.Vertex
	socket string
}

// NodeError is returned when a node fails to resolve. The sentinel errors from
// the interfaces package can be found with errors.Is.
type NodeError struct {
	Node   string
	Socket string
	Err    error
}

// Error returns the error message.
func (obj *NodeError) Error() string {
	if obj.Socket == "" {
		return fmt.Sprintf("node `%s`: %v", obj.Node, obj.Err)
	}
	return fmt.Sprintf("node `%s` socket `%s`: %v", obj.Node, obj.Socket, obj.Err)
}

// Unwrap returns the underlying error.
func (obj *NodeError) Unwrap() error {
	return obj.Err
}

// Pass is a single evaluation of a graph. It must not be reused for a different
// graph, or after the graph changed, since the memoized values would be stale.
type Pass struct {
	Graph *pgraph.Graph

	// ID identifies this pass in debug events.
	ID string

	// Observer receives the output of debug sink nodes. It may be nil.
	Observer interfaces.Observer

	Debug bool
	Logf  func(format string, v ...interface{})

	ctx   *nodes.Context
	state map[key]State
	memo  map[key]*expr.Value
	errs  map[key]error
}

// Init prepares the pass. It must be called before Evaluate.
func (obj *Pass) Init() error {
	if obj.Graph == nil {
		return fmt.Errorf("the Graph must not be nil")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {
			// noop
		}
	}
	obj.ctx = nodes.NewContext(obj.ID)
	obj.ctx.Observer = obj.Observer
	obj.ctx.Debug = obj.Debug
	obj.ctx.Logf = obj.Logf
	obj.state = make(map[key]State)
	obj.memo = make(map[key]*expr.Value)
	obj.errs = make(map[key]error)
	return nil
}

// Evaluate returns the value of an output socket of a vertex. An empty socket
// name refers to the default output. The result is a copy, so the caller may
// modify it freely.
func (obj *Pass) Evaluate(v *pgraph.Vertex, socket string) (*expr.Value, error) {
	if v == nil {
		return nil, fmt.Errorf("can't evaluate a nil vertex")
	}
	if !obj.Graph.HasVertex(v) {
		return nil, &NodeError{Node: v.Name, Socket: socket, Err: fmt.Errorf("vertex is not in graph %s", obj.Graph.GetName())}
	}
	value, err := obj.evaluate(v, socket)
	if err != nil {
		return nil, err
	}
	return value.Copy(), nil
}

// evaluate is the recursive part of Evaluate. The returned value is the one
// stored in the memo.
func (obj *Pass) evaluate(v *pgraph.Vertex, socket string) (*expr.Value, error) {
	sig := v.Signature()
	if sig == nil {
		return nil, &NodeError{Node: v.Name, Socket: socket, Err: interfaces.ErrUnknownKind}
	}
	canonical, err := sig.Output(socket)
	if err != nil {
		return nil, &NodeError{Node: v.Name, Socket: socket, Err: err}
	}
	k := key{v, canonical}

	switch obj.state[k] {
	case Resolved:
		if obj.Debug {
			obj.Logf("memo: %s.%s", v.Name, canonical)
		}
		return obj.memo[k], nil
	case Failed:
		return nil, obj.errs[k]
	case InProgress:
		return nil, &NodeError{Node: v.Name, Socket: canonical, Err: interfaces.ErrCyclicGraph}
	}
	obj.state[k] = InProgress

	value, err := obj.resolve(v, sig, canonical)
	if err != nil {
		obj.errs[k] = err
		obj.state[k] = Failed
		return nil, err
	}
	obj.memo[k] = value
	obj.state[k] = Resolved
	return value, nil
}

// resolve evaluates the inputs of a vertex and runs its resolver. Every error
// it returns is a NodeError.
func (obj *Pass) resolve(v *pgraph.Vertex, sig *nodes.Sig, canonical string) (*expr.Value, error) {
	inputs := make(map[string]*expr.Value)
	for _, x := range sig.Inputs {
		e := obj.Graph.Incoming(v, x.Name)
		if e == nil {
			continue // the resolver fills in the default
		}
		value, err := obj.evaluate(e.From, e.Output)
		if err != nil {
			return nil, err // already a NodeError from the node that failed
		}
		inputs[x.Name] = value
	}

	value, err := nodes.Resolve(obj.ctx, v.Node, inputs, canonical)
	if err != nil {
		return nil, &NodeError{Node: v.Name, Socket: canonical, Err: err}
	}
	return value, nil
}
