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

package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cliUtil "github.com/purpleidea/shadergraph/cli/util"
	"github.com/purpleidea/shadergraph/lib"

	"github.com/spf13/afero"
)

// CompileArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `compile` subcommand.
type CompileArgs struct {
	lib.Config // embedded config (can't be a pointer) https://github.com/alexflint/go-arg/issues/240
}

// Run executes the compile subcommand. The shader goes to stdout unless an
// output file was given.
func (obj *CompileArgs) Run(ctx context.Context, data *cliUtil.Data, stdout io.Writer) (bool, error) {
	main := newMain(&obj.Config, data, stdout)
	if err := main.Init(); err != nil {
		return false, err
	}
	if err := main.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// WatchArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `watch` subcommand.
type WatchArgs struct {
	lib.Config // embedded config (can't be a pointer) https://github.com/alexflint/go-arg/issues/240
}

// Run executes the watch subcommand. It runs until it is interrupted.
func (obj *WatchArgs) Run(ctx context.Context, data *cliUtil.Data, stdout io.Writer) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	main := newMain(&obj.Config, data, stdout)
	main.Watch = true

	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("main: "+format, v...)
	}
	cliUtil.Hello(data.Program, data.Version, data.Flags) // say hello!
	defer Logf("goodbye!")

	if err := main.Init(); err != nil {
		return false, err
	}

	// install the exit signal handler
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	exit := make(chan struct{})
	defer close(exit)
	wg.Add(1)
	go func() {
		defer wg.Done()
		// must have buffer for max number of signals
		signals := make(chan os.Signal, 1+1) // 1 * ^C + 1 * SIGTERM
		signal.Notify(signals, os.Interrupt) // catch ^C
		signal.Notify(signals, syscall.SIGTERM)
		defer signal.Stop(signals)
		select {
		case sig := <-signals: // any signal will do
			Logf("interrupted by %v", sig)
			cancel()
		case <-exit:
		}
	}()

	if err := main.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// GraphvizArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `graphviz` subcommand.
type GraphvizArgs struct {
	lib.GraphvizConfig // embedded config (can't be a pointer) https://github.com/alexflint/go-arg/issues/240
}

// Run executes the graphviz subcommand.
func (obj *GraphvizArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	if err := lib.Graphviz(afero.NewOsFs(), &obj.GraphvizConfig); err != nil {
		return false, err
	}
	if data.Flags.Debug {
		data.Flags.Logf("main: wrote %s", obj.Output)
	}
	return true, nil
}

// newMain builds the core struct from the parsed data.
func newMain(config *lib.Config, data *cliUtil.Data, stdout io.Writer) *lib.Main {
	return &lib.Main{
		Config:  config, // pass in all the parsed data
		Program: data.Program,
		Version: data.Version,
		Fs:      afero.NewOsFs(),
		Stdout:  stdout,
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("main: "+format, v...)
		},
	}
}
