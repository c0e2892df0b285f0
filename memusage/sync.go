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
	"reflect"
	"sync"
	"unsafe"

	"github.com/ethereum/go-memusage/log"
)

// Mutex is a value guarded by a mutual exclusion lock. A panic inside With
// poisons the lock, and measuring a poisoned Mutex aborts the walk.
//
// Measuring a Mutex acquires its lock, so a Mutex must not be measured from
// inside its own With callback.
type Mutex[T any] struct {
	mu       sync.Mutex
	poisoned bool
	value    T
}

// NewMutex returns a Mutex holding v.
func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// With calls fn with exclusive access to the value.
func (m *Mutex[T]) With(fn func(v *T)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return m.poisonError()
	}
	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			panic(r)
		}
	}()
	fn(&m.value)
	return nil
}

// Poisoned reports whether a With callback panicked.
func (m *Mutex[T]) Poisoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poisoned
}

// SizeOfVal implements MemoryUsage.
func (m *Mutex[T]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*m)
	// The guarded value is entered at most once per walk, so a value that
	// refers back to its own lock does not deadlock.
	if !t.Track(unsafe.Pointer(&m.value)) {
		return size
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		err := m.poisonError()
		log.Debug("Aborting memory walk", "err", err)
		panic(err)
	}
	return size + SizeOfVal(&m.value, t)
}

func (m *Mutex[T]) poisonError() *PoisonError {
	return &PoisonError{Type: reflect.TypeOf(m).Elem()}
}

// RWMutex is a value guarded by a reader/writer lock. Only a panic inside With
// poisons it.
type RWMutex[T any] struct {
	mu       sync.RWMutex
	poisoned bool
	value    T
}

// NewRWMutex returns a RWMutex holding v.
func NewRWMutex[T any](v T) *RWMutex[T] {
	return &RWMutex[T]{value: v}
}

// With calls fn with exclusive access to the value.
func (m *RWMutex[T]) With(fn func(v *T)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return m.poisonError()
	}
	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			panic(r)
		}
	}()
	fn(&m.value)
	return nil
}

// View calls fn with shared access to the value. fn must not modify it.
func (m *RWMutex[T]) View(fn func(v *T)) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.poisoned {
		return m.poisonError()
	}
	fn(&m.value)
	return nil
}

// Poisoned reports whether a With callback panicked.
func (m *RWMutex[T]) Poisoned() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.poisoned
}

// SizeOfVal implements MemoryUsage.
func (m *RWMutex[T]) SizeOfVal(t Tracker) uintptr {
	size := unsafe.Sizeof(*m)
	if !t.Track(unsafe.Pointer(&m.value)) {
		return size
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.poisoned {
		err := m.poisonError()
		log.Debug("Aborting memory walk", "err", err)
		panic(err)
	}
	return size + SizeOfVal(&m.value, t)
}

func (m *RWMutex[T]) poisonError() *PoisonError {
	return &PoisonError{Type: reflect.TypeOf(m).Elem()}
}
