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
	"errors"
	"strings"
	"testing"

	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/lang/types"

	"github.com/kylelemons/godebug/pretty"
)

func TestEmit0(t *testing.T) {
	value := Builtin("uv", types.Vec2)
	value.Let("uv_extend", types.Vec3, types.Vec2.Transform(types.Vec3, "uv", 0.5))

	out, err := value.Emit()
	if err != nil {
		t.Errorf("emit failed: %+v", err)
		return
	}

	exp := `@group(1) @binding(1)
var texture: texture_2d<f32>;
@group(1) @binding(2)
var texture_sampler: sampler;

@fragment
fn fragment(
    #import bevy_pbr::mesh_vertex_output
) -> @location(0) vec4<f32> {
    let uv_extend = vec3<f32>(uv, 0.50000);
    return vec4<f32>(uv_extend, 1.0);
}
`
	if out != exp {
		t.Errorf("emitted source did not match expected")
		t.Logf("diff:\n%s", pretty.Compare(strings.Split(out, "\n"), strings.Split(exp, "\n")))
	}
}

func TestEmitUnbound(t *testing.T) {
	out, err := Zero(types.Scalar).Emit()
	if err != nil {
		t.Errorf("emit failed: %+v", err)
		return
	}
	if !strings.HasPrefix(out, Prelude) {
		t.Errorf("missing prelude")
	}
	if !strings.HasSuffix(out, "    return vec4<f32>(vec3<f32>(0.0, vec2<f32>(0.00000)), 1.0);\n}\n") {
		t.Errorf("unexpected ending:\n%s", out)
	}
}

func TestEmitFailure(t *testing.T) {
	type test struct {
		name  string
		value *Value
	}
	testCases := []test{
		{
			name: "empty statement",
			value: &Value{
				Statements: []string{"let a = 1.0;", "  "},
				Type:       types.Scalar,
				Var:        "a",
			},
		},
		{
			name: "multi line statement",
			value: &Value{
				Statements: []string{"let a = 1.0;\nlet b = a;"},
				Type:       types.Scalar,
				Var:        "b",
			},
		},
		{
			name: "unsafe variable",
			value: &Value{
				Statements: []string{},
				Type:       types.Vec2,
				Var:        "uv; discard",
			},
		},
		{
			name: "bad shape",
			value: &Value{
				Statements: []string{},
				Type:       types.Shape(7),
				Var:        "uv",
			},
		},
	}
	for index, tc := range testCases {
		out, err := tc.value.Emit()
		if err == nil {
			t.Errorf("test #%d (%s): expected error", index, tc.name)
			continue
		}
		if !errors.Is(err, interfaces.ErrEmissionFailure) {
			t.Errorf("test #%d (%s): unexpected error kind: %+v", index, tc.name, err)
		}
		if out != "" {
			t.Errorf("test #%d (%s): partial output returned", index, tc.name)
		}
	}
}

type failWriter struct{}

func (obj *failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteToFailure(t *testing.T) {
	_, err := Builtin("uv", types.Vec2).WriteTo(&failWriter{})
	if !errors.Is(err, interfaces.ErrEmissionFailure) {
		t.Errorf("expected emission failure, got: %+v", err)
	}
}
