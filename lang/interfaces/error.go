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

package interfaces

// Error is a constant error type that implements error.
type Error string

// Error fulfills the error interface of this type.
func (e Error) Error() string { return string(e) }

const (
	// ErrMissingRequiredInput is returned when a required input socket is
	// not connected and the node kind has no safe default for it.
	ErrMissingRequiredInput = Error("missing required input")

	// ErrUnknownOutputSocket is returned when a node is asked for an
	// output socket that its kind does not declare.
	ErrUnknownOutputSocket = Error("unknown output socket")

	// ErrUnknownInputSocket is returned when an edge targets an input
	// socket that the node kind does not declare.
	ErrUnknownInputSocket = Error("unknown input socket")

	// ErrCyclicGraph is returned when evaluation re-enters a node output
	// that is still being resolved.
	ErrCyclicGraph = Error("cyclic graph")

	// ErrEmissionFailure is returned when the shader source text could not
	// be assembled.
	ErrEmissionFailure = Error("emission failure")

	// ErrUnknownKind is returned when a node kind name isn't recognized.
	ErrUnknownKind = Error("unknown node kind")
)
