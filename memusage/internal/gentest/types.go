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

// Package gentest holds types whose memory accounting is generated by
// memusagegen.
package gentest

import "github.com/ethereum/go-memusage/memusage"

//go:generate go run ../../memusagegen --config memusagegen.toml

type Point struct {
	X, Y int64
}

// Padding has no owned memory, its usage is the padded flat size.
type Padding struct {
	A uint8
	B uint64
	C uint8
}

type Record struct {
	Name   string
	Tags   []string
	Next   *Record
	Meta   map[string]int
	Origin Point
	Count  int
}

type Generic[T any] struct {
	Value T
	Items []T
	n     int
}

// Thing is a closed set of shapes.
type Thing interface {
	isThing()
}

type Circle struct {
	Radius float64
}

type Label string

type Polygon struct {
	Points []Point
}

// Ref refers to a record without owning it exclusively.
type Ref struct {
	p *Record
}

func NewRef(r *Record) Ref {
	return Ref{p: r}
}

func (Circle) isThing() {}

func (Label) isThing() {}

func (*Polygon) isThing() {}

func (Ref) isThing() {}

type Holder struct {
	Thing  Thing
	Things []Thing
	ID     uint32
}

type Inventory struct {
	Items  memusage.Box[Record]
	Shared memusage.Arc[Label]
	Counts *memusage.Mutex[map[string]int]
	Owner  memusage.Option[string]
	Path   memusage.PathBuf
	Kind   memusage.Phantom[Thing]
	Slots  int
}
