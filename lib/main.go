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

// Package lib is the core logic of the program. It loads a shader graph file,
// compiles it, and in watch mode keeps recompiling it whenever it changes.
package lib

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/purpleidea/shadergraph/lang"
	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/pgraph"
	"github.com/purpleidea/shadergraph/prometheus"
	"github.com/purpleidea/shadergraph/util"
	"github.com/purpleidea/shadergraph/util/errwrap"
	"github.com/purpleidea/shadergraph/util/recwatch"
	"github.com/purpleidea/shadergraph/yamlgraph"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

// ShutdownTimeout is how long the preview server gets to finish its requests on
// exit.
const ShutdownTimeout = 5 * time.Second

// Config is the common set of options which the compile and watch commands
// share. It is parsed by the cli.
type Config struct {
	// Input is the path of the graph file.
	Input string `arg:"positional,required" help:"graph file (yaml) to compile"`

	// Output is where the shader is written. If it is empty, the shader is
	// written to the Stdout of Main.
	Output string `arg:"--output,env:SHADERGRAPH_OUTPUT" help:"write the shader to this file instead of stdout"`

	// Root overrides the root of the graph file. It is a node name with an
	// optional socket, as in `node` or `node.socket`.
	Root string `arg:"--root,env:SHADERGRAPH_ROOT" help:"node or node.socket to compile"`

	// Listen is the address of the preview server. Empty disables it.
	Listen string `arg:"--listen,env:SHADERGRAPH_LISTEN" help:"preview server address, such as 127.0.0.1:8080"`

	// Limit is the number of recompiles per second. Zero means no limit.
	Limit float64 `arg:"--limit,env:SHADERGRAPH_LIMIT" default:"4" help:"max recompiles per second, or zero for no limit"`

	// Burst is the number of recompiles allowed back to back.
	Burst int `arg:"--burst,env:SHADERGRAPH_BURST" default:"1" help:"recompiles allowed back to back"`
}

// Main is the main struct for running the shadergraph logic.
type Main struct {
	*Config // embedded config

	Program string // the name of this program, usually set at compile time
	Version string // the version of this program, usually set at compile time

	// Fs is where the graph is read from and the output is written to.
	Fs afero.Fs

	// Stdout receives the shader when no Output file is set.
	Stdout io.Writer

	// Watch keeps recompiling whenever the input changes.
	Watch bool

	// Events replaces the file watcher when it is set.
	Events <-chan recwatch.Event

	Debug bool
	Logf  func(format string, v ...interface{})

	lang  *lang.Lang
	prom  *prometheus.Prometheus
	state *state

	limiter *rate.Limiter
	server  *http.Server
	wg      *sync.WaitGroup
}

// Validate checks the configuration before Init.
func (obj *Main) Validate() error {
	if obj.Program == "" || obj.Version == "" {
		return fmt.Errorf("you must set the Program and Version strings")
	}
	if obj.Config == nil {
		return fmt.Errorf("the Config must not be nil")
	}
	if obj.Input == "" {
		return fmt.Errorf("the Input must not be empty")
	}
	if obj.Limit < 0 {
		return fmt.Errorf("the Limit must not be negative")
	}
	// bonus safety check
	if obj.Limit > 0 && obj.Burst <= 0 { // blocked
		return fmt.Errorf("permanently limited (rate != Inf, burst = 0)")
	}
	if obj.Listen != "" && !obj.Watch {
		return fmt.Errorf("the preview server needs watch mode")
	}
	return nil
}

// Init initializes the main struct after it performs some validation.
func (obj *Main) Init() error {
	if err := obj.Validate(); err != nil {
		return err
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {
			// noop
		}
	}
	if obj.Fs == nil {
		obj.Fs = afero.NewOsFs()
	}
	if obj.Stdout == nil {
		obj.Stdout = io.Discard
	}

	obj.state = newState()
	obj.prom = &prometheus.Prometheus{}
	if err := obj.prom.Init(); err != nil {
		return errwrap.Wrapf(err, "can't initialize prometheus instance")
	}
	obj.prom.InitResultMetrics()

	obj.lang = &lang.Lang{
		Observer: interfaces.ObserverFunc(func(event *interfaces.DebugEvent) {
			obj.prom.AddDebugEvents(1)
			if obj.Debug {
				obj.Logf("debug: pass %s: node `%s`:\n%s", event.Pass, event.Node, event.Source)
			}
		}),
		Debug: obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("lang: "+format, v...)
		},
	}
	if err := obj.lang.Init(); err != nil {
		return errwrap.Wrapf(err, "can't initialize the compiler")
	}

	limit := rate.Limit(obj.Limit)
	if obj.Limit == 0 {
		limit = rate.Inf
	}
	obj.limiter = rate.NewLimiter(limit, obj.Burst)
	obj.wg = &sync.WaitGroup{}
	return nil
}

// httpLogf is the logger of the preview server.
func (obj *Main) httpLogf(format string, v ...interface{}) {
	obj.Logf("http: "+format, v...)
}

// root returns the vertex and socket to compile.
func (obj *Main) root(config *yamlgraph.GraphConfig, graph *pgraph.Graph) (*pgraph.Vertex, string, error) {
	if obj.Root == "" {
		return config.RootVertex(graph)
	}
	name, socket, _ := strings.Cut(obj.Root, ".")
	v := graph.VertexByName(name)
	if v == nil {
		return nil, "", fmt.Errorf("root node `%s` not found", name)
	}
	return v, socket, nil
}

// Compile runs one full pass: it reads the graph file, compiles it, and writes
// the output. On failure the last good shader stays published.
func (obj *Main) Compile() (*lang.Result, error) {
	id := uuid.New().String()
	result, err := obj.compile(id)
	if err != nil {
		obj.state.fail(id, err)
		obj.prom.UpdateCompileTotal(false)
		return nil, errwrap.Wrapf(err, "pass %s", id)
	}
	obj.state.succeed(result)
	obj.prom.UpdateCompileTotal(true)
	obj.prom.UpdateCompileStatements(result.Statements)
	return result, nil
}

func (obj *Main) compile(id string) (*lang.Result, error) {
	config, err := yamlgraph.ParseFile(obj.Fs, obj.Input)
	if err != nil {
		return nil, err
	}
	graph, err := config.NewGraphFromConfig()
	if err != nil {
		return nil, err
	}
	root, socket, err := obj.root(config, graph)
	if err != nil {
		return nil, err
	}
	if obj.Debug {
		used := graph.Ancestors(root)
		for _, v := range graph.Vertices() {
			if !pgraph.VertexContains(v, used) {
				obj.Logf("pass %s: node %s doesn't reach the root %s", id, v, root)
			}
		}
	}

	result, err := obj.lang.Compile(id, graph, root, socket)
	if err != nil {
		return nil, err
	}
	if err := obj.write(result.Source); err != nil {
		return nil, errwrap.Wrapf(err, "could not write output")
	}
	return result, nil
}

// write publishes the source. Files are replaced atomically so that a reader
// never sees a partial shader.
func (obj *Main) write(source string) error {
	if obj.Output == "" {
		_, err := io.WriteString(obj.Stdout, source)
		return err
	}
	tmp := obj.Output + ".tmp"
	if err := afero.WriteFile(obj.Fs, tmp, []byte(source), 0644); err != nil {
		return err
	}
	if err := obj.Fs.Rename(tmp, obj.Output); err != nil {
		if e := obj.Fs.Remove(tmp); e != nil && obj.Debug {
			obj.Logf("could not remove %s: %+v", tmp, e)
		}
		return err
	}
	return nil
}

// Run compiles the input once, and in watch mode keeps recompiling it until the
// context is cancelled. Outside of watch mode the compile error is returned,
// while in watch mode failures are logged and the loop continues.
func (obj *Main) Run(ctx context.Context) error {
	if _, err := obj.Compile(); err != nil {
		if !obj.Watch {
			return err
		}
		obj.Logf("compile failed: %+v", err)
	}
	if !obj.Watch {
		return nil
	}

	events := obj.Events
	if events == nil {
		watcher, err := recwatch.NewRecWatcher(obj.Input,
			recwatch.Debug(obj.Debug),
			recwatch.Logf(func(format string, v ...interface{}) {
				obj.Logf("watch: "+format, v...)
			}),
		)
		if err != nil {
			return errwrap.Wrapf(err, "could not watch `%s`", obj.Input)
		}
		defer watcher.Close()
		events = watcher.Events()
	}

	if obj.Listen != "" {
		if err := obj.serve(); err != nil {
			return err
		}
		defer obj.shutdown()
	}

	obj.Logf("watching: %s", obj.Input)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Error != nil {
				return errwrap.Wrapf(event.Error, "watch failed")
			}

		case <-ctx.Done():
			return nil
		}

		if err := obj.limit(ctx, events); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		result, err := obj.Compile()
		if err != nil {
			obj.Logf("compile failed: %+v", err)
			continue
		}
		obj.Logf("compiled pass %s (%d statements)", result.ID, result.Statements)
	}
}

// limit waits until the rate limiter allows another compile. Events that show
// up in the meantime are absorbed, since the next compile reads the latest file
// anyways.
func (obj *Main) limit(ctx context.Context, events <-chan recwatch.Event) error {
	now := time.Now()
	r := obj.limiter.ReserveN(now, 1) // one event
	d := r.DelayFrom(now)
	if d <= 0 {
		return nil
	}
	if obj.Debug {
		obj.Logf("limited (rate: %v/sec, burst: %d, next: %v)", obj.limiter.Limit(), obj.limiter.Burst(), d)
	}
	var count int
	timer := time.NewTimer(d)
	defer timer.Stop() // it's nice to cleanup
	for {
		select {
		case <-timer.C: // the wait is over
			if obj.Debug && count > 0 {
				obj.Logf("rate limiting absorbed %d event(s)", count)
			}
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Error != nil {
				return errwrap.Wrapf(event.Error, "watch failed")
			}
			count++ // count the events...

		case <-ctx.Done():
			return nil
		}
	}
}

// serve starts the preview server. The listener is opened before returning, so
// that an unusable address is reported right away.
func (obj *Main) serve() error {
	listener, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return errwrap.Wrapf(err, "could not listen on `%s`", obj.Listen)
	}
	obj.server = &http.Server{
		Addr:    obj.Listen,
		Handler: obj.Router(),
		ErrorLog: log.New(&util.LogWriter{
			Prefix: "http: ",
			Logf:   obj.Logf,
		}, "", 0),
	}
	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		obj.httpLogf("listening on %s", listener.Addr())
		if err := obj.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			obj.httpLogf("server failed: %+v", err)
		}
	}()
	return nil
}

// shutdown stops the preview server.
func (obj *Main) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := obj.server.Shutdown(ctx); err != nil {
		obj.httpLogf("shutdown failed: %+v", err)
	}
	obj.wg.Wait()
}

// Last returns the last good compile result, or nil.
func (obj *Main) Last() *lang.Result {
	return obj.lang.Last()
}
