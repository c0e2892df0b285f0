// Copyright 2024 The go-memusage Authors
// This file is part of the go-memusage library.
//
// The go-memusage library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-memusage library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-memusage library. If not, see <http://www.gnu.org/licenses/>.

package memusage

import "unsafe"

// Pair is a tuple of two values.
type Pair[A, B any] struct {
	First  A
	Second B
}

// SizeOfVal implements MemoryUsage.
func (p *Pair[A, B]) SizeOfVal(t Tracker) uintptr {
	return unsafe.Sizeof(*p) + ExtraOf(&p.First, t) + ExtraOf(&p.Second, t)
}

// Triple is a tuple of three values.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// SizeOfVal implements MemoryUsage.
func (p *Triple[A, B, C]) SizeOfVal(t Tracker) uintptr {
	return unsafe.Sizeof(*p) + ExtraOf(&p.First, t) + ExtraOf(&p.Second, t) + ExtraOf(&p.Third, t)
}

// Quad is a tuple of four values.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// SizeOfVal implements MemoryUsage.
func (p *Quad[A, B, C, D]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*p)
	size += ExtraOf(&p.First, t)
	size += ExtraOf(&p.Second, t)
	size += ExtraOf(&p.Third, t)
	size += ExtraOf(&p.Fourth, t)
	return size
}
