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

// Package expr contains the intermediate representation that is threaded
// through graph resolution: an ordered list of statements plus the typed
// variable that holds the current result.
package expr

import (
	"fmt"
	"strings"

	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/types"
)

// Value is an expression value. The statements are in definition order, and
// each one binds a variable at most once, so a later statement may reference
// anything an earlier one declared. An empty Var means the value is unbound,
// which renders as a zero literal of its shape.
type Value struct {
	Statements []string
	Type       types.Shape
	Var        string
}

// Zero returns the unbound default value of a shape. It is what an unconnected
// input socket resolves to.
func Zero(shape types.Shape) *Value {
	return &Value{
		Statements: []string{},
		Type:       shape,
	}
}

// Builtin returns a value that refers to a variable that is provided by the
// shader entry point, so it needs no statements.
func Builtin(name string, shape types.Shape) *Value {
	return &Value{
		Statements: []string{},
		Type:       shape,
		Var:        name,
	}
}

// Copy returns a deep copy so that the new value can be extended without
// modifying the original.
func (obj *Value) Copy() *Value {
	statements := make([]string, len(obj.Statements))
	copy(statements, obj.Statements)
	return &Value{
		Statements: statements,
		Type:       obj.Type,
		Var:        obj.Var,
	}
}

// Push appends a statement.
func (obj *Value) Push(statement string) {
	obj.Statements = append(obj.Statements, statement)
}

// Let appends a statement that binds name to expression, and makes that the
// active result with the given shape.
func (obj *Value) Let(name string, shape types.Shape, expression string) {
	obj.Push(fmt.Sprintf("let %s = %s;", name, expression))
	obj.Bind(name, shape)
}

// Bind records the active result without touching the statements.
func (obj *Value) Bind(name string, shape types.Shape) {
	obj.Var = name
	obj.Type = shape
}

// Bound returns true if the value refers to a variable.
func (obj *Value) Bound() bool {
	return obj.Var != ""
}

// Ref returns the text that refers to the current result. This is the variable
// name, or a zero literal of the right shape if the value is unbound.
func (obj *Value) Ref() string {
	if !obj.Bound() {
		return obj.Type.Fill(0.0)
	}
	return obj.Var
}

// Base returns the identifier that derived names should be built from.
func (obj *Value) Base() string {
	if !obj.Bound() {
		return interfaces.ZeroBase
	}
	return obj.Var
}

// Merge appends every statement of other that this value doesn't already
// hold, keeping their relative order. Two values that share a resolved input
// both carry its statements, and those must only be emitted once.
func (obj *Value) Merge(other *Value) {
	if other == nil {
		return
	}
	have := make(map[string]struct{}, len(obj.Statements))
	for _, s := range obj.Statements {
		have[s] = struct{}{}
	}
	for _, s := range other.Statements {
		if _, exists := have[s]; exists {
			continue
		}
		have[s] = struct{}{}
		obj.Push(s)
	}
}

// RenderFinal returns the expression that coerces the current result into the
// target shape with the last lane forced to alpha. This is used to build the
// returned color, which always has a fixed alpha whatever shape was reached.
func (obj *Value) RenderFinal(target types.Shape, alpha float64) string {
	ref := obj.Ref()
	if target == types.Scalar {
		return obj.Type.TransformDefault(types.Scalar, ref)
	}
	inner, _ := types.ShapeOfArity(target.Arity() - 1) // can't fail
	return fmt.Sprintf("%s(%s, %s)", target.Type(), obj.Type.TransformDefault(inner, ref), types.FormatFloat(alpha))
}

// String returns a short human readable summary of the value.
func (obj *Value) String() string {
	return fmt.Sprintf("%s: %s (%d statements)", obj.Ref(), obj.Type, len(obj.Statements))
}

// ValidIdent returns true if the name only contains characters from the safe
// identifier set and doesn't start with a digit.
func ValidIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return !strings.HasPrefix(name, "__") // reserved by the shading language
}
