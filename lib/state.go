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
	"sync"
	"time"

	"github.com/purpleidea/shadergraph/lang"
	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/util/errwrap"
)

// Status is the outcome of the last compile pass.
type Status struct {
	// ID is the pass identifier.
	ID string `json:"id"`

	// OK is true if the pass produced a shader.
	OK bool `json:"ok"`

	// Error is the failure message if the pass failed.
	Error string `json:"error,omitempty"`

	// Errors lists each problem separately when a failure had several, such
	// as an invalid graph file.
	Errors []string `json:"errors,omitempty"`

	// Statements is the size of the last good shader.
	Statements int `json:"statements"`

	// Count is the number of passes so far.
	Count uint64 `json:"count"`

	Time time.Time `json:"time"`
}

// state holds what the preview server publishes. A failed pass updates the
// status but never replaces the last good shader.
type state struct {
	mutex *sync.RWMutex

	source string
	events []*interfaces.DebugEvent
	status *Status
	count  uint64
}

func newState() *state {
	return &state{
		mutex: &sync.RWMutex{},
	}
}

// succeed records a good pass.
func (obj *state) succeed(result *lang.Result) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.count++
	obj.source = result.Source
	obj.events = result.Events
	obj.status = &Status{
		ID:         result.ID,
		OK:         true,
		Statements: result.Statements,
		Count:      obj.count,
		Time:       time.Now(),
	}
}

// fail records a failed pass.
func (obj *state) fail(id string, err error) {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	obj.count++
	statements := 0
	if obj.status != nil {
		statements = obj.status.Statements
	}
	errs := []string{}
	for _, e := range errwrap.Flatten(err) {
		errs = append(errs, errwrap.String(e))
	}
	obj.status = &Status{
		ID:         id,
		OK:         false,
		Error:      errwrap.String(err),
		Errors:     errs,
		Statements: statements,
		Count:      obj.count,
		Time:       time.Now(),
	}
}

// Source returns the last good shader source, or an empty string.
func (obj *state) Source() string {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	return obj.source
}

// Events returns the debug events of the last good pass.
func (obj *state) Events() []*interfaces.DebugEvent {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	return append([]*interfaces.DebugEvent{}, obj.events...) // copy
}

// Status returns a copy of the last status, or nil before the first pass.
func (obj *state) Status() *Status {
	obj.mutex.RLock()
	defer obj.mutex.RUnlock()
	if obj.status == nil {
		return nil
	}
	status := *obj.status
	status.Errors = append([]string{}, obj.status.Errors...) // copy
	return &status
}
