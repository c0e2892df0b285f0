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

package gentest

import (
	"errors"
	"reflect"
	"testing"
	"unsafe"

	"github.com/ethereum/go-memusage/memusage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	w          = unsafe.Sizeof(uintptr(0))
	strSize    = unsafe.Sizeof("")
	intSize    = unsafe.Sizeof(int(0))
	ifaceSize  = unsafe.Sizeof(Thing(nil))
	sliceSize  = unsafe.Sizeof([]Point(nil))
	pointSize  = unsafe.Sizeof(Point{})
	circleSize = unsafe.Sizeof(Circle{})
	recordSize = unsafe.Sizeof(Record{})
)

// bigCircle and wrapsThing satisfy Thing without being declared next to it.
type bigCircle struct {
	Circle
	Data []byte
}

type wrapsThing struct {
	Thing
	Data []byte
}

const (
	bigCircleSize  = unsafe.Sizeof(bigCircle{})
	wrapsThingSize = unsafe.Sizeof(wrapsThing{})
)

func TestPadding(t *testing.T) {
	p := Padding{A: 1, B: 2, C: 3}
	assert.Equal(t, unsafe.Sizeof(p), memusage.SizeOf(&p))
	assert.Greater(t, uint64(memusage.SizeOf(&p)), uint64(10))
}

func TestRecord(t *testing.T) {
	r := &Record{
		Name:   "root",
		Tags:   []string{"a", "bc"},
		Next:   &Record{Name: "child"},
		Origin: Point{1, 2},
		Count:  7,
	}
	want := recordSize + 4 + 2*strSize + 3 + recordSize + 5
	assert.Equal(t, want, memusage.SizeOf(r))

	r.Meta = map[string]int{"k": 1}
	want += strSize + 1 + intSize
	assert.Equal(t, want, memusage.SizeOf(r))
}

func TestRecordCycle(t *testing.T) {
	r := &Record{Name: "loop", Tags: []string{"x"}}
	r.Next = r

	// The root is entered once more through its own pointer.
	want := recordSize + 4 + strSize + 1 + recordSize + 4
	assert.Equal(t, want, memusage.SizeOf(r))
}

func TestGeneric(t *testing.T) {
	s := Generic[string]{Value: "abc", Items: []string{"de"}, n: 1}
	assert.Equal(t, unsafe.Sizeof(s)+3+strSize+2, memusage.SizeOf(&s))

	i := Generic[int]{Value: 7, Items: []int{1, 2, 3}}
	assert.Equal(t, unsafe.Sizeof(i)+3*intSize, memusage.SizeOf(&i))

	var empty Generic[*Record]
	assert.Equal(t, unsafe.Sizeof(empty), memusage.SizeOf(&empty))
}

func TestThing(t *testing.T) {
	rec := &Record{Name: "r"}
	tests := []struct {
		name  string
		thing Thing
		want  uintptr
	}{
		{"nil", nil, ifaceSize},
		{"circle", Circle{Radius: 2}, ifaceSize + circleSize},
		{"circle pointer", &Circle{Radius: 2}, ifaceSize + circleSize},
		{"label", Label("abc"), ifaceSize + strSize + 3},
		{"polygon", &Polygon{Points: make([]Point, 2)}, ifaceSize + sliceSize + 2*pointSize},
		{"empty polygon", &Polygon{}, ifaceSize + sliceSize},
		{"ref", NewRef(rec), ifaceSize + recordSize + 1},
		{"nil ref", NewRef(nil), ifaceSize},
		{"unknown embedding variant", bigCircle{Data: make([]byte, 1000)}, ifaceSize + bigCircleSize + 1000},
		{"unknown embedding interface", wrapsThing{Thing: Label("ab"), Data: make([]byte, 10)}, ifaceSize + wrapsThingSize + strSize + 2 + 10},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, memusage.SizeOf(&test.thing))
			assert.Equal(t, test.want-ifaceSize, memusage.ExtraOf(&test.thing, memusage.NewAddressSet()))
		})
	}
}

func TestHolder(t *testing.T) {
	rec := &Record{Name: "r"}
	h := &Holder{
		Thing: Circle{Radius: 1},
		Things: []Thing{
			Label("xy"),
			&Polygon{Points: []Point{{1, 2}}},
			NewRef(rec),
			NewRef(rec), // shared, counted once
		},
		ID: 9,
	}
	want := unsafe.Sizeof(*h) + circleSize +
		4*ifaceSize +
		strSize + 2 +
		sliceSize + pointSize +
		recordSize + 1
	assert.Equal(t, want, memusage.SizeOf(h))
}

func TestInventory(t *testing.T) {
	inv := &Inventory{
		Items:  memusage.NewBox(Record{Name: "boxed"}),
		Shared: memusage.NewArc(Label("shared")),
		Counts: memusage.NewMutex(map[string]int{"a": 1, "b": 2}),
		Owner:  memusage.Some("me"),
		Path:   *memusage.NewPathBuf("/tmp"),
		Slots:  3,
	}
	mutexSize := reflect.TypeOf(inv.Counts).Elem().Size()
	want := unsafe.Sizeof(*inv) +
		recordSize + 5 +
		strSize + 6 +
		mutexSize + w + 2*(strSize+1+intSize) +
		strSize + 2 +
		uintptr(inv.Path.Cap())
	assert.Equal(t, want, memusage.SizeOf(inv))

	inv.Owner = memusage.None[string]()
	inv.Counts = nil
	want -= strSize + 2 + mutexSize + w + 2*(strSize+1+intSize)
	assert.Equal(t, want, memusage.SizeOf(inv))
}

func TestInventoryPoisoned(t *testing.T) {
	inv := &Inventory{Counts: memusage.NewMutex(map[string]int{})}
	assert.Panics(t, func() {
		inv.Counts.With(func(m *map[string]int) { panic("boom") })
	})

	_, err := memusage.TrySizeOf(inv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, memusage.ErrPoisoned))
}
