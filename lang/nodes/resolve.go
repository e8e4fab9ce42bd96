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

package nodes

import (
	"fmt"
	"strings"

	"github.com/purpleidea/shadergraph/lang/expr"
	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/types"
	"github.com/purpleidea/shadergraph/util/errwrap"
)

// Resolve computes the value of one output socket of a node from the values of
// its inputs. Missing inputs get their zero default. The input values are never
// modified, and the returned value is always a new one.
func Resolve(ctx *Context, node *Node, inputs map[string]*expr.Value, output string) (*expr.Value, error) {
	if err := node.Validate(); err != nil {
		return nil, err
	}
	sig := node.Signature()
	output, err := sig.Output(output)
	if err != nil {
		return nil, err
	}
	inputs, err = sig.Fill(inputs)
	if err != nil {
		return nil, err
	}

	var value *expr.Value
	switch node.Kind {
	case KindUV:
		value, err = resolveSource(ctx, "uv", types.Vec2, "uv", output)
	case KindNormal:
		value, err = resolveSource(ctx, "world_normal", types.Vec3, "normal", output)
	case KindPosition:
		value, err = resolveSource(ctx, "world_position", types.Vec4, "position", output)
	case KindTexture:
		value, err = resolveTexture(ctx, node, output)
	case KindExtend:
		value, err = resolveExtend(ctx, inputs["value"], node.Amount)
	case KindComponent:
		value, err = resolveComponent(ctx, inputs["value"], output)
	case KindSaturate:
		value, err = resolveSaturate(ctx, inputs["value"])
	case KindVector:
		value, err = resolveVector(ctx, inputs)
	case KindPreview:
		value = inputs["input"].Copy()
	case KindPrint:
		value, err = resolvePrint(ctx, node, inputs["output"])
	default:
		// programming error, Validate should have caught this
		return nil, fmt.Errorf("no resolver for kind %s", node.Kind)
	}
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not resolve %s", node)
	}

	if ctx.Debug {
		ctx.Logf("resolved %s.%s to %s", node, output, value)
	}
	return value, nil
}

// resolveSource returns a builtin vector, or one of its lanes.
func resolveSource(ctx *Context, builtin string, shape types.Shape, whole, output string) (*expr.Value, error) {
	value := expr.Builtin(builtin, shape)
	if output == whole {
		return value, nil // no statement needed
	}
	index := strings.Index("xyzw", output)
	lane, err := shape.Swizzle(index)
	if err != nil {
		return nil, err
	}
	name := ctx.Unique(builtin + interfaces.IdentSep + output)
	value.Let(name, types.Scalar, fmt.Sprintf("%s.%s", builtin, lane))
	return value, nil
}

// resolveTexture samples the bound texture at the builtin uv. The lanes of one
// node share a single sample.
func resolveTexture(ctx *Context, node *Node, output string) (*expr.Value, error) {
	value := ctx.sample(node)
	if output == "color" {
		return value, nil
	}
	sample := value.Var
	name := ctx.Unique(sample + interfaces.IdentSep + output)
	value.Let(name, types.Scalar, fmt.Sprintf("%s.%s", sample, output))
	return value, nil
}

// resolveExtend widens the input by one lane, padding it with amount.
func resolveExtend(ctx *Context, input *expr.Value, amount float64) (*expr.Value, error) {
	value := input.Copy()
	from := value.Type
	to := from.Extend()
	name := ctx.Unique(value.Base() + interfaces.IdentSep + "extend")
	value.Let(name, to, from.Transform(to, value.Ref(), amount))
	return value, nil
}

// resolveComponent extracts one lane of the input, after widening it to four.
func resolveComponent(ctx *Context, input *expr.Value, lane string) (*expr.Value, error) {
	value := input.Copy()
	vec := value.Type.TransformDefault(types.Vec4, value.Ref())
	name := ctx.Unique(value.Base() + interfaces.IdentSep + lane)
	value.Let(name, types.Scalar, fmt.Sprintf("%s.%s", vec, lane))
	return value, nil
}

// resolveSaturate clamps every lane of the input into [0, 1].
func resolveSaturate(ctx *Context, input *expr.Value) (*expr.Value, error) {
	value := input.Copy()
	shape := value.Type
	name := ctx.Unique(value.Base() + interfaces.IdentSep + "saturate")
	clamp := fmt.Sprintf("clamp(%s, %s, %s)", value.Ref(), shape.Fill(0.0), shape.Fill(1.0))
	value.Let(name, shape, clamp)
	return value, nil
}

// resolveVector composes a vec4 out of four scalars. The statements of every
// input are merged in socket order, so shared inputs are only emitted once.
func resolveVector(ctx *Context, inputs map[string]*expr.Value) (*expr.Value, error) {
	value := expr.Zero(types.Vec4)
	components := []string{}
	for _, socket := range xyzw {
		input := inputs[socket]
		value.Merge(input)
		components = append(components, input.Type.TransformDefault(types.Scalar, input.Ref()))
	}
	name := ctx.Unique(fmt.Sprintf("vec%s%d", interfaces.IdentSep, ctx.Counter()))
	value.Let(name, types.Vec4, fmt.Sprintf("%s(%s)", types.Vec4.Type(), strings.Join(components, ", ")))
	return value, nil
}

// resolvePrint passes its input through, and publishes the rendered source on
// the debug side channel.
func resolvePrint(ctx *Context, node *Node, input *expr.Value) (*expr.Value, error) {
	value := input.Copy()
	source, err := value.Emit()
	if err != nil {
		return nil, err
	}
	ctx.emit(node, source)
	return value, nil
}
