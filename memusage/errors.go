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
	"errors"
	"fmt"
	"reflect"
)

// ErrPoisoned is wrapped by every PoisonError.
var ErrPoisoned = errors.New("lock poisoned")

// PoisonError aborts a walk that reached a lock whose holder panicked.
type PoisonError struct {
	Type reflect.Type // type of the lock wrapper
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("memusage: %v: %v", e.Type, ErrPoisoned)
}

func (e *PoisonError) Unwrap() error {
	return ErrPoisoned
}

// ContractError is raised when a MemoryUsage implementation reports less than
// the flat size of its value.
type ContractError struct {
	Type reflect.Type
	Size uintptr // reported by SizeOfVal
	Flat uintptr // inline size of the type
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("memusage: %v reported %d bytes, less than its flat size %d", e.Type, e.Size, e.Flat)
}

func checkedExtra(typ reflect.Type, size, flat uintptr) uintptr {
	if size < flat {
		panic(&ContractError{Type: typ, Size: size, Flat: flat})
	}
	return size - flat
}
