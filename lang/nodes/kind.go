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

// Package nodes contains the closed set of shader node kinds, their socket
// signatures, and the resolver that turns the resolved inputs of a node into a
// new expression value.
package nodes

import (
	"fmt"
	"strings"

	"github.com/purpleidea/shadergraph/lang/interfaces"
	"github.com/purpleidea/shadergraph/util/errwrap"
)

// Kind is the variant of a node. The set is closed, and every kind has exactly
// one resolver.
type Kind int

// These are all the node kinds.
const (
	KindUV Kind = iota
	KindNormal
	KindPosition
	KindTexture
	KindExtend
	KindComponent
	KindSaturate
	KindVector
	KindPreview
	KindPrint
)

var kindNames = []string{
	KindUV:        "uv",
	KindNormal:    "normal",
	KindPosition:  "position",
	KindTexture:   "texture",
	KindExtend:    "extend",
	KindComponent: "component",
	KindSaturate:  "saturate",
	KindVector:    "vector",
	KindPreview:   "preview",
	KindPrint:     "print",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	kinds := []Kind{}
	for i := range kindNames {
		kinds = append(kinds, Kind(i))
	}
	return kinds
}

// ParseKind returns the kind with the given name. Matching is case insensitive.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	names := []string{}
	for _, kind := range Kinds() {
		if kind.String() == name {
			return kind, nil
		}
		names = append(names, kind.String())
	}
	return 0, errwrap.Wrapf(interfaces.ErrUnknownKind, "kind `%s` is not one of: %s", s, strings.Join(names, ", "))
}

// Valid returns true if this is a known kind.
func (obj Kind) Valid() bool {
	return obj >= 0 && int(obj) < len(kindNames)
}

// String returns the name of the kind.
func (obj Kind) String() string {
	if !obj.Valid() {
		return fmt.Sprintf("Kind(%d)", int(obj))
	}
	return kindNames[obj]
}

// IsSource returns true for kinds that read a builtin and have no inputs.
func (obj Kind) IsSource() bool {
	switch obj {
	case KindUV, KindNormal, KindPosition, KindTexture:
		return true
	}
	return false
}

// IsSink returns true for kinds that are meant to be used as a compile root.
func (obj Kind) IsSink() bool {
	return obj == KindPreview || obj == KindPrint
}

// MarshalYAML encodes the kind by name.
func (obj Kind) MarshalYAML() (interface{}, error) {
	if !obj.Valid() {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownKind, "kind %d", int(obj))
	}
	return obj.String(), nil
}

// UnmarshalYAML decodes the kind from its name.
func (obj *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	kind, err := ParseKind(s)
	if err != nil {
		return err
	}
	*obj = kind
	return nil
}
