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

import (
	"sync/atomic"
	"unsafe"
)

// Box is an exclusively owned heap allocation. Its contents are always charged
// to the box.
type Box[T any] struct {
	ptr *T
}

// NewBox moves v to the heap.
func NewBox[T any](v T) Box[T] {
	return Box[T]{ptr: &v}
}

// Get returns the boxed value, or nil for the zero Box.
func (b Box[T]) Get() *T {
	return b.ptr
}

// SizeOfVal implements MemoryUsage.
func (b *Box[T]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*b)
	if b.ptr != nil {
		size += SizeOfVal(b.ptr, t)
	}
	return size
}

type arcInner[T any] struct {
	refs  atomic.Int64
	value T
}

// Arc is a reference-counted shared owner. Every Arc charges the full shared
// value, so a value held by two owners is counted twice.
type Arc[T any] struct {
	inner *arcInner[T]
}

// NewArc moves v to the heap with a reference count of one.
func NewArc[T any](v T) Arc[T] {
	a := Arc[T]{inner: &arcInner[T]{value: v}}
	a.inner.refs.Store(1)
	return a
}

// Clone returns a new owner of the same value.
func (a Arc[T]) Clone() Arc[T] {
	a.inner.refs.Add(1)
	return a
}

// Release drops one owner. It reports whether it was the last one.
func (a Arc[T]) Release() bool {
	n := a.inner.refs.Add(-1)
	if n < 0 {
		panic("memusage: Arc released more often than cloned")
	}
	return n == 0
}

// RefCount returns the current number of owners.
func (a Arc[T]) RefCount() int64 {
	return a.inner.refs.Load()
}

// Get returns the shared value.
func (a Arc[T]) Get() *T {
	return &a.inner.value
}

// SizeOfVal implements MemoryUsage.
func (a *Arc[T]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*a)
	if a.inner != nil {
		size += SizeOfVal(&a.inner.value, t)
	}
	return size
}
