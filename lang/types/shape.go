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

// Package types provides the value shapes that flow through a shader graph and
// the coercion rules between them.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape is the lane count of a value. The shapes form a small lattice that is
// totally ordered by arity, so widening and narrowing are always defined.
type Shape int

// Each Shape represents a value type in the generated shading language.
const (
	Scalar Shape = iota
	Vec2
	Vec3
	Vec4
)

// DecimalPlaces is the precision used for literals inside vector constructors.
const DecimalPlaces = 5

// Shapes lists every shape in widening order.
var Shapes = []Shape{Scalar, Vec2, Vec3, Vec4}

// lanes is the prefix swizzle for each arity.
var lanes = "xyzw"

// ShapeOfArity returns the shape with the requested lane count.
func ShapeOfArity(n int) (Shape, error) {
	if n < 1 || n > len(Shapes) {
		return Scalar, fmt.Errorf("invalid arity: %d", n)
	}
	return Shapes[n-1], nil
}

// ParseShape returns the shape named by the input string. It accepts both the
// short names returned by String and the shading language type names.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar", "f32", "float":
		return Scalar, nil
	case "vec2", "vec2<f32>":
		return Vec2, nil
	case "vec3", "vec3<f32>":
		return Vec3, nil
	case "vec4", "vec4<f32>":
		return Vec4, nil
	}
	return Scalar, fmt.Errorf("unknown shape: `%s`", s)
}

// Arity returns the number of lanes in the shape.
func (obj Shape) Arity() int {
	return int(obj) + 1
}

// Valid returns true if this is one of the four known shapes.
func (obj Shape) Valid() bool {
	return obj >= Scalar && obj <= Vec4
}

// String returns the short name of the shape.
func (obj Shape) String() string {
	switch obj {
	case Scalar:
		return "scalar"
	case Vec2:
		return "vec2"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	}
	return fmt.Sprintf("Shape(%d)", int(obj))
}

// Type returns the shading language type of the shape.
func (obj Shape) Type() string {
	if obj == Scalar {
		return "f32"
	}
	return fmt.Sprintf("vec%d<f32>", obj.Arity())
}

// Extend widens the shape by exactly one lane. Vec4 is the top of the lattice
// and extends to itself.
func (obj Shape) Extend() Shape {
	if obj >= Vec4 {
		return Vec4
	}
	return obj + 1
}

// Fill renders a literal of this shape with every lane set to value. A scalar
// is a bare number, and a vector is a splat constructor with a fixed number of
// decimal places.
func (obj Shape) Fill(value float64) string {
	if obj == Scalar {
		return FormatFloat(value)
	}
	return fmt.Sprintf("%s(%s)", obj.Type(), formatFixed(value))
}

// Transform returns an expression of shape `to` built out of the variable named
// by `name` which is of this shape. Widening pads the missing lanes with the
// extend value, and narrowing (including any vector to scalar) selects a prefix
// of the lanes with a swizzle.
func (obj Shape) Transform(to Shape, name string, extend float64) string {
	from := obj.Arity()
	want := to.Arity()

	if from == want {
		return name // identity
	}

	if want < from {
		return fmt.Sprintf("%s.%s", name, lanes[:want])
	}

	missing := want - from
	pad := formatFixed(extend) // one lane
	if missing > 1 {
		padShape, _ := ShapeOfArity(missing) // can't fail, 2 <= missing <= 3
		pad = padShape.Fill(extend)
	}
	return fmt.Sprintf("%s(%s, %s)", to.Type(), name, pad)
}

// TransformDefault is Transform with zero padding.
func (obj Shape) TransformDefault(to Shape, name string) string {
	return obj.Transform(to, name, 0.0)
}

// Swizzle returns the single lane accessor for the index, or an error if that
// lane doesn't exist in this shape.
func (obj Shape) Swizzle(index int) (string, error) {
	if index < 0 || index >= obj.Arity() {
		return "", fmt.Errorf("lane %d out of range for %s", index, obj)
	}
	return lanes[index : index+1], nil
}

// FormatFloat renders a float as the shortest literal that round trips, always
// keeping a decimal point so the result is never read as an integer.
func FormatFloat(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0.0 // not representable as a literal
	}
	if value == 0 {
		value = 0 // no negative zero
	}
	s := strconv.FormatFloat(value, 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatFixed renders a float with the fixed vector literal precision.
func formatFixed(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0.0
	}
	if value == 0 {
		value = 0
	}
	return strconv.FormatFloat(value, 'f', DecimalPlaces, 64)
}
