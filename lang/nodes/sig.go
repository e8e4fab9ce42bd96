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
	"github.com/purpleidea/shadergraph/lang/expr"
	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/types"
	"github.com/purpleidea/shadergraph/util/errwrap"
)

// Input is a named input socket.
type Input struct {
	Name string

	// Shape is the shape of the zero value used when nothing is connected.
	Shape types.Shape

	// Required inputs have no safe default, and leaving them unconnected is
	// an error.
	Required bool
}

// Sig is the socket signature of a node kind.
type Sig struct {
	Inputs []*Input

	// Outputs are the selectable output sockets. The first one is what an
	// empty socket name refers to.
	Outputs []string
}

// Input returns the input socket with that name, or nil if it doesn't exist.
func (obj *Sig) Input(name string) *Input {
	for _, x := range obj.Inputs {
		if x.Name == name {
			return x
		}
	}
	return nil
}

// Output returns the canonical name of the requested output socket. An empty
// name picks the default output. Sinks without outputs only accept the empty
// name.
func (obj *Sig) Output(name string) (string, error) {
	if name == "" {
		if len(obj.Outputs) == 0 {
			return "", nil
		}
		return obj.Outputs[0], nil
	}
	for _, x := range obj.Outputs {
		if x == name {
			return x, nil
		}
	}
	return "", errwrap.Wrapf(interfaces.ErrUnknownOutputSocket, "socket `%s`", name)
}

// Fill returns a complete map of inputs. Every declared input that isn't
// present gets the zero value of its shape. Inputs which are present are not
// copied, since resolvers never mutate them.
func (obj *Sig) Fill(inputs map[string]*expr.Value) (map[string]*expr.Value, error) {
	for name := range inputs {
		if obj.Input(name) == nil {
			return nil, errwrap.Wrapf(interfaces.ErrUnknownInputSocket, "socket `%s`", name)
		}
	}
	result := make(map[string]*expr.Value, len(obj.Inputs))
	for _, x := range obj.Inputs {
		if value, exists := inputs[x.Name]; exists && value != nil {
			result[x.Name] = value
			continue
		}
		if x.Required {
			return nil, errwrap.Wrapf(interfaces.ErrMissingRequiredInput, "socket `%s`", x.Name)
		}
		result[x.Name] = expr.Zero(x.Shape)
	}
	return result, nil
}

// xyzw are the outputs of a kind that selects one component.
var xyzw = []string{"x", "y", "z", "w"}

var signatures = map[Kind]*Sig{
	KindUV: {
		Outputs: []string{"uv", "x", "y"},
	},
	KindNormal: {
		Outputs: []string{"normal", "x", "y", "z"},
	},
	KindPosition: {
		Outputs: []string{"position", "x", "y", "z", "w"},
	},
	KindTexture: {
		Outputs: []string{"color", "r", "g", "b", "a"},
	},
	KindExtend: {
		Inputs:  []*Input{{Name: "value", Shape: types.Scalar}},
		Outputs: []string{"vec"},
	},
	KindComponent: {
		Inputs:  []*Input{{Name: "value", Shape: types.Vec4}},
		Outputs: xyzw,
	},
	KindSaturate: {
		Inputs:  []*Input{{Name: "value", Shape: types.Scalar}},
		Outputs: []string{"saturated"},
	},
	KindVector: {
		Inputs: []*Input{
			{Name: "x", Shape: types.Scalar},
			{Name: "y", Shape: types.Scalar},
			{Name: "z", Shape: types.Scalar},
			{Name: "w", Shape: types.Scalar},
		},
		Outputs: []string{"vec"},
	},
	KindPreview: {
		Inputs:  []*Input{{Name: "input", Shape: types.Vec4}},
		Outputs: []string{"output"},
	},
	KindPrint: {
		Inputs: []*Input{{Name: "output", Shape: types.Vec4}},
	},
}

// Signature returns the socket signature of a kind, or nil if the kind isn't
// valid. The result must not be modified.
func Signature(kind Kind) *Sig {
	return signatures[kind]
}
