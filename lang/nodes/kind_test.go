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
	"errors"
	"strings"
	"testing"

	"github.com/purpleidea/shadergraph/lang/interfaces"

	"gopkg.in/yaml.v2"
)

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		x, err := ParseKind(kind.String())
		if err != nil {
			t.Errorf("kind %s: parse failed: %+v", kind, err)
			continue
		}
		if x != kind {
			t.Errorf("kind %s parsed as %s", kind, x)
		}
	}
	if x, err := ParseKind(" Saturate "); err != nil || x != KindSaturate {
		t.Errorf("expected case insensitive match, got: %s, %+v", x, err)
	}
	_, err := ParseKind("blur")
	if !errors.Is(err, interfaces.ErrUnknownKind) {
		t.Errorf("expected unknown kind error, got: %+v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "uv, normal, position, texture, extend") {
		t.Errorf("expected the known kinds in: %v", err)
	}
}

func TestSignatures(t *testing.T) {
	for _, kind := range Kinds() {
		sig := Signature(kind)
		if sig == nil {
			t.Errorf("kind %s has no signature", kind)
			continue
		}
		if kind.IsSource() && len(sig.Inputs) != 0 {
			t.Errorf("source kind %s has inputs", kind)
		}
		if !kind.IsSource() && len(sig.Inputs) == 0 {
			t.Errorf("kind %s has no inputs", kind)
		}
		if kind != KindPrint && len(sig.Outputs) == 0 {
			t.Errorf("kind %s has no outputs", kind)
		}
		for _, x := range sig.Inputs {
			if x.Required {
				t.Errorf("kind %s input %s has no default", kind, x.Name)
			}
		}
	}
	if Signature(Kind(99)) != nil {
		t.Errorf("expected nil signature for an invalid kind")
	}
}

func TestSigFillRequired(t *testing.T) {
	sig := &Sig{
		Inputs: []*Input{{Name: "value", Required: true}},
	}
	if _, err := sig.Fill(nil); !errors.Is(err, interfaces.ErrMissingRequiredInput) {
		t.Errorf("expected missing required input, got: %+v", err)
	}
}

func TestKindYAML(t *testing.T) {
	node := &Node{}
	if err := yaml.Unmarshal([]byte("name: s1\nkind: saturate\n"), node); err != nil {
		t.Errorf("unmarshal failed: %+v", err)
		return
	}
	if node.Kind != KindSaturate || node.Name != "s1" {
		t.Errorf("unexpected node: %s", node)
	}

	b, err := yaml.Marshal(&Node{Name: "e1", Kind: KindExtend, Amount: 0.5})
	if err != nil {
		t.Errorf("marshal failed: %+v", err)
		return
	}
	if s := string(b); s != "name: e1\nkind: extend\namount: 0.5\n" {
		t.Errorf("unexpected yaml:\n%s", s)
	}

	if err := yaml.Unmarshal([]byte("name: b\nkind: blur\n"), &Node{}); err == nil {
		t.Errorf("expected error for an unknown kind")
	}
}
