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

package memusage_test

import (
	"fmt"
	"unsafe"

	"github.com/ethereum/go-memusage/memusage"
)

type node struct {
	name     string
	children []*node
}

func ExampleSizeOf() {
	leaf := &node{name: "leaf"}
	root := node{name: "root", children: []*node{leaf, leaf}}

	// The shared child is counted once.
	flat := unsafe.Sizeof(node{})
	ptr := unsafe.Sizeof(leaf)
	want := flat + 4 + 2*ptr + flat + 4
	fmt.Println(memusage.SizeOf(&root) == want)
	// Output: true
}

func ExampleAddressSet() {
	shared := new(int64)
	t := memusage.NewAddressSet()

	a := []*int64{shared}
	b := []*int64{shared}
	first := memusage.SizeOfVal(&a, t)
	second := memusage.SizeOfVal(&b, t)
	fmt.Println(first-second == unsafe.Sizeof(*shared))
	// Output: true
}

func ExampleTrySizeOf() {
	m := memusage.NewMutex([]string{"a"})
	func() {
		defer func() { recover() }()
		m.With(func(v *[]string) { panic("boom") })
	}()

	_, err := memusage.TrySizeOf(m)
	fmt.Println(err != nil, m.Poisoned())
	// Output: true true
}
