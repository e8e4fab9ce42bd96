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

package expr

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/types"
	"github.com/purpleidea/shadergraph/util/errwrap"
)

const (
	// TextureBinding is the binding slot of the sampled texture.
	TextureBinding = 1

	// SamplerBinding is the binding slot of the texture sampler.
	SamplerBinding = 2

	// BindGroup is the bind group that holds the material resources.
	BindGroup = 1

	// Indent is prepended to every statement in the function body.
	Indent = "    "
)

// Prelude is the fixed text before the function body. It declares the external
// resource bindings and the entry point signature.
var Prelude = fmt.Sprintf(`@group(%d) @binding(%d)
var texture: texture_2d<f32>;
@group(%d) @binding(%d)
var texture_sampler: sampler;

@fragment
fn fragment(
%s#import bevy_pbr::mesh_vertex_output
) -> @location(0) vec4<f32> {
`, BindGroup, TextureBinding, BindGroup, SamplerBinding, Indent)

// Epilogue closes the function body.
const Epilogue = "}\n"

// Validate checks that the value can be rendered as a function body.
func (obj *Value) Validate() error {
	for i, s := range obj.Statements {
		if strings.TrimSpace(s) == "" {
			return errwrap.Wrapf(interfaces.ErrEmissionFailure, "statement %d is empty", i)
		}
		if strings.ContainsAny(s, "\r\n") {
			return errwrap.Wrapf(interfaces.ErrEmissionFailure, "statement %d spans lines", i)
		}
	}
	if obj.Bound() && !ValidIdent(obj.Var) {
		return errwrap.Wrapf(interfaces.ErrEmissionFailure, "invalid result variable `%s`", obj.Var)
	}
	if !obj.Type.Valid() {
		return errwrap.Wrapf(interfaces.ErrEmissionFailure, "invalid result shape %d", int(obj.Type))
	}
	return nil
}

// WriteTo writes the complete shader source to w. Nothing is written if the
// value doesn't validate. It implements io.WriterTo.
func (obj *Value) WriteTo(w io.Writer) (int64, error) {
	if err := obj.Validate(); err != nil {
		return 0, err
	}

	buf := &bytes.Buffer{}
	if _, err := io.WriteString(buf, Prelude); err != nil {
		return 0, errwrap.Wrapf(interfaces.ErrEmissionFailure, "prelude: %s", err)
	}
	for _, s := range obj.Statements {
		if _, err := fmt.Fprintf(buf, "%s%s\n", Indent, s); err != nil {
			return 0, errwrap.Wrapf(interfaces.ErrEmissionFailure, "statement: %s", err)
		}
	}
	final := obj.RenderFinal(types.Vec4, interfaces.DefaultAlpha)
	if _, err := fmt.Fprintf(buf, "%sreturn %s;\n", Indent, final); err != nil {
		return 0, errwrap.Wrapf(interfaces.ErrEmissionFailure, "return: %s", err)
	}
	if _, err := io.WriteString(buf, Epilogue); err != nil {
		return 0, errwrap.Wrapf(interfaces.ErrEmissionFailure, "epilogue: %s", err)
	}
	if !utf8.Valid(buf.Bytes()) {
		return 0, errwrap.Wrapf(interfaces.ErrEmissionFailure, "source is not valid utf-8")
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return n, errwrap.Wrapf(interfaces.ErrEmissionFailure, "write: %s", err)
	}
	return n, nil
}

// Emit returns the complete shader source for this value.
func (obj *Value) Emit() (string, error) {
	var sb strings.Builder
	if _, err := obj.WriteTo(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
