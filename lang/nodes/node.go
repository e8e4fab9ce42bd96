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
	"math"
)

// Node is one operation in a shader graph. Parameters that only apply to some
// kinds are ignored by the others.
type Node struct {
	// Name identifies the node in the graph. It must be unique.
	Name string `yaml:"name"`

	Kind Kind `yaml:"kind"`

	// Amount is the padding value used by the extend kind.
	Amount float64 `yaml:"amount"`
}

// String returns the canonical form for a node.
func (obj *Node) String() string {
	return fmt.Sprintf("%s[%s]", obj.Kind, obj.Name)
}

// Validate checks that the node is well formed.
func (obj *Node) Validate() error {
	if obj.Name == "" {
		return fmt.Errorf("node has an empty name")
	}
	if !obj.Kind.Valid() {
		return fmt.Errorf("node %s has an invalid kind", obj.Name)
	}
	if math.IsNaN(obj.Amount) || math.IsInf(obj.Amount, 0) {
		return fmt.Errorf("node %s has a non-finite amount", obj.Name)
	}
	return nil
}

// Signature returns the socket signature of this node's kind.
func (obj *Node) Signature() *Sig {
	return Signature(obj.Kind)
}
