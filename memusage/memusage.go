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

// Package memusage measures the memory held by Go values.
//
// A measurement walks one root value and reports its flat size, including any
// padding, plus the memory owned by everything reachable from it. Storage that
// is reachable more than once through references is charged once: every walk
// carries a Tracker that remembers the addresses already accounted for.
//
// Types can report their own usage by implementing MemoryUsage. The
// memusagegen command generates such implementations for structs and sealed
// interfaces. All other types are measured by reflective sizers which are
// built on first use and cached per type.
//
// A SizeOfVal method promoted from an embedded field only covers that field.
// Structs without a SizeOfVal method of their own are measured field by field.
package memusage

import (
	"reflect"
	"unsafe"
)

// PointerSize is the size of a machine pointer in bytes.
const PointerSize = unsafe.Sizeof(uintptr(0))

// Tracker records the addresses visited during a single walk.
type Tracker interface {
	// Track reports whether addr is seen for the first time in this walk and
	// records it.
	Track(addr unsafe.Pointer) bool
}

// AddressSet is the default Tracker. Besides addresses it keeps the backing
// arrays of slices already charged, in a separate set: a slice and a pointer to
// its first element share an address but not their cost.
type AddressSet struct {
	addrs  map[unsafe.Pointer]struct{}
	arrays map[unsafe.Pointer]struct{}
}

// NewAddressSet creates an empty tracker.
func NewAddressSet() *AddressSet {
	return &AddressSet{
		addrs:  make(map[unsafe.Pointer]struct{}),
		arrays: make(map[unsafe.Pointer]struct{}),
	}
}

// Track implements Tracker.
func (s *AddressSet) Track(addr unsafe.Pointer) bool {
	return insert(s.addrs, addr)
}

func (s *AddressSet) trackArray(data unsafe.Pointer) bool {
	return insert(s.arrays, data)
}

func insert(set map[unsafe.Pointer]struct{}, addr unsafe.Pointer) bool {
	if _, ok := set[addr]; ok {
		return false
	}
	set[addr] = struct{}{}
	return true
}

// arrayTracker is implemented by trackers that deduplicate slice backing
// arrays. Slices measured with any other Tracker are always charged in full.
type arrayTracker interface {
	trackArray(data unsafe.Pointer) bool
}

func trackArray(t Tracker, data unsafe.Pointer) bool {
	if at, ok := t.(arrayTracker); ok {
		return at.trackArray(data)
	}
	return true
}

// MemoryUsage is implemented by types that report their own memory usage.
type MemoryUsage interface {
	// SizeOfVal returns the size of the value in bytes: its flat size, including
	// tail padding, plus the memory owned by its children. The result must not
	// be smaller than the flat size of the value.
	SizeOfVal(t Tracker) uintptr
}

// SizeOf returns the memory usage of *v, measured with a fresh tracker.
func SizeOf[T any](v *T) uintptr {
	return SizeOfVal(v, NewAddressSet())
}

// SizeOfVal returns the memory usage of *v. Storage already recorded in t is
// not counted again.
func SizeOfVal[T any](v *T, t Tracker) uintptr {
	if v == nil {
		return 0
	}
	return cachedSizer(typeOf[T]()).deep(reflect.ValueOf(v).Elem(), t)
}

// ExtraOf returns the memory owned by *v beyond its flat size. Containers sum
// the extras of their inline members on top of their own flat size.
func ExtraOf[T any](v *T, t Tracker) uintptr {
	if v == nil {
		return 0
	}
	return cachedSizer(typeOf[T]()).extra(reflect.ValueOf(v).Elem(), t)
}

// ExtraOfAny returns the memory owned by the dynamic value of v beyond the
// interface word holding it. Generated union sizers use it for dynamic types
// that are not among the known variants.
func ExtraOfAny(v any, t Tracker) uintptr {
	return ExtraOf(&v, t)
}

// TrySizeOf is like SizeOf, but reports a walk aborted by a poisoned lock as an
// error instead of panicking. Any other panic is propagated.
func TrySizeOf[T any](v *T) (size uintptr, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*PoisonError)
			if !ok {
				panic(r)
			}
			size, err = 0, perr
		}
	}()
	return SizeOf(v), nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
