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

package interfaces

const (
	// IdentSep joins the parts of a generated identifier. For example the
	// `x` lane of `uv` is bound to `uv_x`.
	IdentSep = "_"

	// ZeroBase is the identifier base used for values derived from an
	// unconnected input, which has no variable of its own.
	ZeroBase = "zero"

	// DefaultAlpha is the alpha lane forced onto the final color.
	DefaultAlpha = 1.0
)
