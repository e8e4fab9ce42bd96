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

// Package lang is the shader graph compiler. It evaluates a graph from a root
// output socket and renders the complete fragment shader source.
package lang

import (
	"fmt"
	"sync"

	"github.com/purpleidea/shadergraph/lang/eval"
	"github.com/purpleidea/shadergraph/lang/expr"
	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/pgraph"
	"github.com/purpleidea/shadergraph/util/errwrap"

	"github.com/google/uuid"
)

// Options are the optional parameters of a single compile.
type Options struct {
	// ID is the pass identifier. A random one is used if this is empty.
	ID string

	// Observer also receives every debug event as it happens. The events
	// are always collected in the Result as well.
	Observer interfaces.Observer

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Result is the output of a successful compile.
type Result struct {
	// ID is the pass identifier, which is also found in every event.
	ID string

	// Source is the complete shader source.
	Source string

	// Statements is the number of statements in the function body.
	Statements int

	// Events are the debug sink emissions of this pass, in order.
	Events []*interfaces.DebugEvent

	// Value is the evaluated root.
	Value *expr.Value
}

// Compile evaluates the root output socket of graph in a fresh pass, and
// returns the rendered source. An empty socket name picks the default output.
// Nothing partial is ever returned, but debug events that were already sent to
// the observer before a failure are not taken back.
func Compile(graph *pgraph.Graph, root *pgraph.Vertex, socket string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	if graph == nil {
		return nil, fmt.Errorf("can't compile a nil graph")
	}
	if root == nil {
		return nil, fmt.Errorf("can't compile without a root")
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(format string, v ...interface{}) {
			// noop
		}
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}

	recorder := &interfaces.Recorder{}
	observer := interfaces.ObserverFunc(func(event *interfaces.DebugEvent) {
		recorder.Observe(event)
		if opts.Debug {
			logf("debug event from node `%s` (%d bytes)", event.Node, len(event.Source))
		}
		if opts.Observer != nil {
			opts.Observer.Observe(event)
		}
	})

	pass := &eval.Pass{
		Graph:    graph,
		ID:       id,
		Observer: observer,
		Debug:    opts.Debug,
		Logf:     logf,
	}
	if err := pass.Init(); err != nil {
		return nil, errwrap.Wrapf(err, "could not init pass")
	}
	if opts.Debug {
		logf("pass %s: compiling %s from graph %s", id, root, graph)
	}
	value, err := pass.Evaluate(root, socket)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not evaluate graph")
	}
	source, err := value.Emit()
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not emit source")
	}
	if opts.Debug {
		logf("pass %s: %d statements", id, len(value.Statements))
	}

	return &Result{
		ID:         id,
		Source:     source,
		Statements: len(value.Statements),
		Events:     recorder.Events,
		Value:      value,
	}, nil
}

// Lang is the long lived compiler that a host keeps around. Every call to
// Compile is a fresh pass, and the last successful result is kept.
type Lang struct {
	// Observer receives the debug events of every pass. It may be nil.
	Observer interfaces.Observer

	Debug bool
	Logf  func(format string, v ...interface{})

	mutex *sync.Mutex
	last  *Result
}

// Init initializes the lang struct.
func (obj *Lang) Init() error {
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {
			// noop
		}
	}
	obj.mutex = &sync.Mutex{}
	return nil
}

// Compile runs one compile pass with the given pass id, or a random one if it is
// empty. Passes are serialized, so the observer never sees events from two
// passes interleaved.
func (obj *Lang) Compile(id string, graph *pgraph.Graph, root *pgraph.Vertex, socket string) (*Result, error) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()

	result, err := Compile(graph, root, socket, &Options{
		ID:       id,
		Observer: obj.Observer,
		Debug:    obj.Debug,
		Logf:     obj.Logf,
	})
	if err != nil {
		return nil, err
	}
	obj.last = result
	return result, nil
}

// Last returns the last successful result, or nil if there wasn't one yet.
func (obj *Lang) Last() *Result {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.last
}
