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

// Phantom marks a type parameter without storing a value of it.
type Phantom[T any] struct{}

// SizeOfVal implements MemoryUsage.
func (*Phantom[T]) SizeOfVal(Tracker) uintptr {
	return 0
}

// opaque is implemented by values that are accounted as a bare address.
type opaque interface {
	address() unsafe.Pointer
}

// Cell refers to a value that is shared and mutated through its address. The
// walk does not look behind a cell: it is charged one pointer on first
// encounter of the address and nothing afterwards.
type Cell[T any] struct {
	ptr *T
}

// NewCell moves v to the heap and returns a Cell referring to it.
func NewCell[T any](v T) Cell[T] {
	return Cell[T]{ptr: &v}
}

// Get returns the address of the held value, or nil for the zero Cell.
func (c Cell[T]) Get() *T {
	return c.ptr
}

func (c *Cell[T]) address() unsafe.Pointer {
	return unsafe.Pointer(c.ptr)
}

// SizeOfVal implements MemoryUsage.
func (c *Cell[T]) SizeOfVal(t Tracker) uintptr {
	return opaqueSize(c.address(), t)
}

// opaqueSize charges one pointer for addr unless it was seen before. A nil
// address is charged every time.
func opaqueSize(addr unsafe.Pointer, t Tracker) uintptr {
	if addr == nil || t.Track(addr) {
		return PointerSize
	}
	return 0
}
