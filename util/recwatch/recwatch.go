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

// Package recwatch provides file watching events via fsnotify. It watches the
// parent directory of the file, so that editors which save by renaming a new
// file over the old one are still seen.
package recwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

// Event represents a watcher event. These can include errors.
type Event struct {
	Error error
	Body  *fsnotify.Event
}

// RecWatcher is the struct for the file watcher. Run Init() on it.
type RecWatcher struct {
	// Path is the file that we're watching. It doesn't need to exist yet,
	// but its directory does.
	Path string

	// Opts are the list of options that we are using this with.
	Opts []Option

	options  *recwatchOptions // computed options
	safename string           // clean absolute path
	dir      string           // directory that holds the watch
	watcher  *fsnotify.Watcher
	events   chan Event // one channel for events and err...
	closed   bool       // is the events channel closed?
	mutex    sync.Mutex // lock guarding the channel closing
	wg       sync.WaitGroup
	exit     chan struct{}
}

// NewRecWatcher creates an initializes a new file watcher.
func NewRecWatcher(path string, opts ...Option) (*RecWatcher, error) {
	obj := &RecWatcher{
		Path: path,
		Opts: opts,
	}
	return obj, obj.Init()
}

// Init starts the file watcher.
func (obj *RecWatcher) Init() error {
	obj.watcher = nil
	obj.events = make(chan Event)
	obj.exit = make(chan struct{})
	obj.options = &recwatchOptions{ // default recwatch options
		debug: false,
		logf: func(format string, v ...interface{}) {
			// noop
		},
	}
	for _, optionFunc := range obj.Opts { // apply the recwatch options
		optionFunc(obj.options)
	}

	if obj.options.logf == nil {
		return fmt.Errorf("recwatch: logf must not be nil")
	}
	if obj.Path == "" {
		return fmt.Errorf("recwatch: path must not be empty")
	}

	safename, err := filepath.Abs(obj.Path)
	if err != nil {
		return err
	}
	obj.safename = filepath.Clean(safename)
	obj.dir = filepath.Dir(obj.safename)

	obj.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := obj.watcher.Add(obj.dir); err != nil {
		obj.watcher.Close()
		obj.watcher = nil
		// ENOENT for linux, etc and IsNotExist for macOS
		if err == syscall.ENOENT || os.IsNotExist(err) {
			return fmt.Errorf("directory `%s` does not exist", obj.dir)
		}
		if err == syscall.ENOSPC {
			// no space left on device, out of inotify watches
			return fmt.Errorf("out of inotify watches: %v", err)
		} else if os.IsPermission(err) {
			return fmt.Errorf("permission denied adding a watch: %v", err)
		}
		return fmt.Errorf("unknown error: %v", err)
	}
	if obj.options.debug {
		obj.options.logf("watching: %s", obj.safename)
	}

	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		if err := obj.Watch(); err != nil {
			// we need this mutex, because if we Init and then Close
			// immediately, this can send after closed which panics!
			obj.mutex.Lock()
			if !obj.closed {
				select {
				case obj.events <- Event{Error: err}:
				case <-obj.exit:
					// pass
				}
			}
			obj.mutex.Unlock()
		}
	}()
	return nil
}

// Close shuts down the watcher.
func (obj *RecWatcher) Close() error {
	var err error
	close(obj.exit) // send exit signal
	obj.wg.Wait()
	if obj.watcher != nil {
		err = obj.watcher.Close()
		obj.watcher = nil
	}
	obj.mutex.Lock()
	obj.closed = true
	close(obj.events)
	obj.mutex.Unlock()
	return err
}

// Events returns a channel of events. These include events for errors.
func (obj *RecWatcher) Events() chan Event { return obj.events }

// Watch is the primary listener and it outputs events for the watched file.
func (obj *RecWatcher) Watch() error {
	if obj.watcher == nil {
		return fmt.Errorf("the watcher is not initialized")
	}

	for {
		select {
		case event, ok := <-obj.watcher.Events:
			if !ok {
				return nil
			}
			if obj.options.debug {
				obj.options.logf("watch(%s), event(%s): %v", obj.dir, event.Name, event.Op)
			}
			// different files in the same directory also show up here
			if filepath.Clean(event.Name) != obj.safename {
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue // contents didn't change
			}

			select {
			// exit even when we're blocked on event sending
			case obj.events <- Event{Error: nil, Body: &event}:
			case <-obj.exit:
				return fmt.Errorf("pending event not sent")
			}

		case err, ok := <-obj.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("unknown watcher error: %v", err)

		case <-obj.exit:
			return nil
		}
	}
}

// Option is a type that can be used to configure the recwatcher.
type Option func(*recwatchOptions)

type recwatchOptions struct {
	debug bool
	logf  func(format string, v ...interface{})
}

// Debug specifies whether we should run in debug mode or not.
func Debug(debug bool) Option {
	return func(rwo *recwatchOptions) {
		rwo.debug = debug
	}
}

// Logf passes a logger function that we can use if so desired.
func Logf(logf func(format string, v ...interface{})) Option {
	return func(rwo *recwatchOptions) {
		rwo.logf = logf
	}
}
