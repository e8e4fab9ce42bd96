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

// Package interfaces contains the errors, constants and side channel types
// that are shared by the compiler packages.
package interfaces

// DebugEvent is emitted on the side channel whenever a debug sink is resolved.
// It holds the full shader source as rendered at that point in the graph.
type DebugEvent struct {
	// Pass is the unique id of the compile pass that produced the event.
	Pass string

	// Node is the name of the debug sink node.
	Node string

	// Source is the rendered shader source.
	Source string
}

// Observer receives debug events. The host decides how to surface them, so
// implementations must not assume they run on any particular goroutine, but
// they are called synchronously from the compile pass.
type Observer interface {
	Observe(*DebugEvent)
}

// ObserverFunc adapts a plain function into an Observer.
type ObserverFunc func(*DebugEvent)

// Observe calls the wrapped function.
func (fn ObserverFunc) Observe(event *DebugEvent) {
	fn(event)
}

// Recorder is an Observer which keeps every event it sees in order.
type Recorder struct {
	Events []*DebugEvent
}

// Observe appends the event to the list.
func (obj *Recorder) Observe(event *DebugEvent) {
	obj.Events = append(obj.Events, event)
}
