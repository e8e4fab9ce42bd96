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

	"github.com/iancoleman/strcase"
)

// Reserved are identifiers declared by the prelude or the entry point. Nothing
// generated may shadow them.
var Reserved = []string{
	"fragment",
	"texture",
	"texture_sampler",
	"uv",
	"world_normal",
	"world_position",
}

// Context is the state owned by a single compile pass. It hands out unique
// identifiers and the composed vector counter, and carries the debug observer.
// It is not safe for concurrent use, but each pass gets its own.
type Context struct {
	// ID identifies the compile pass in debug events and logs.
	ID string

	// Observer receives debug sink events. It may be nil.
	Observer interfaces.Observer

	Debug bool
	Logf  func(format string, v ...interface{})

	used    map[string]struct{}
	counter int
	samples map[*Node]*expr.Value
}

// NewContext returns a fresh context for one compile pass.
func NewContext(id string) *Context {
	obj := &Context{
		ID:      id,
		used:    make(map[string]struct{}),
		samples: make(map[*Node]*expr.Value),
		Logf: func(format string, v ...interface{}) {
			// noop
		},
	}
	for _, name := range Reserved {
		obj.used[name] = struct{}{}
	}
	return obj
}

// Unique returns a safe identifier built from base which hasn't been returned
// before in this context. The first request for a base gets the base itself,
// and later ones get a numeric suffix.
func (obj *Context) Unique(base string) string {
	name := Sanitize(base)
	if _, exists := obj.used[name]; !exists {
		obj.used[name] = struct{}{}
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%s%d", name, interfaces.IdentSep, i)
		if _, exists := obj.used[candidate]; !exists {
			obj.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// Counter returns the next value of the monotonic counter for this pass.
func (obj *Context) Counter() int {
	n := obj.counter
	obj.counter++
	return n
}

// sample returns the texture sample of a node, so that every lane of one
// texture node reads the same sample in a pass.
func (obj *Context) sample(node *Node) *expr.Value {
	if value, exists := obj.samples[node]; exists {
		return value.Copy()
	}
	value := expr.Zero(types.Vec4)
	value.Let(obj.Unique("texture_color"), types.Vec4, "textureSample(texture, texture_sampler, uv)")
	obj.samples[node] = value
	return value.Copy()
}

// emit publishes a debug event if anyone is listening.
func (obj *Context) emit(node *Node, source string) {
	if obj.Observer == nil {
		return
	}
	obj.Observer.Observe(&interfaces.DebugEvent{
		Pass:   obj.ID,
		Node:   node.Name,
		Source: source,
	})
}

// Sanitize converts a string into an identifier that only uses lower case
// letters, digits and underscores, and that doesn't start with a digit.
func Sanitize(s string) string {
	s = strcase.ToSnake(s)
	var sb strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			sb.WriteRune(c)
		default:
			sb.WriteString(interfaces.IdentSep)
		}
	}
	name := strings.TrimLeft(sb.String(), interfaces.IdentSep)
	if name == "" {
		return interfaces.ZeroBase
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "n" + interfaces.IdentSep + name
	}
	return name
}
