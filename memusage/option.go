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

// Option holds either a value or nothing. Only a present value is measured.
type Option[T any] struct {
	value T
	some  bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, some: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the held value and whether there is one.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.some
}

// IsSome reports whether o holds a value.
func (o Option[T]) IsSome() bool {
	return o.some
}

// SizeOfVal implements MemoryUsage.
func (o *Option[T]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*o)
	if o.some {
		size += SizeOfVal(&o.value, t)
	}
	return size
}

// Result holds either a value or an error value. Only the live one is measured.
type Result[T, E any] struct {
	value T
	err   E
	isErr bool
}

// Ok returns a successful Result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{value: v}
}

// Err returns a failed Result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{err: e, isErr: true}
}

// IsErr reports whether r holds an error value.
func (r Result[T, E]) IsErr() bool {
	return r.isErr
}

// Value returns the success value. It is the zero value if r failed.
func (r Result[T, E]) Value() T {
	return r.value
}

// ErrValue returns the error value. It is the zero value if r succeeded.
func (r Result[T, E]) ErrValue() E {
	return r.err
}

// SizeOfVal implements MemoryUsage.
func (r *Result[T, E]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*r)
	if r.isErr {
		size += SizeOfVal(&r.err, t)
	} else {
		size += SizeOfVal(&r.value, t)
	}
	return size
}
