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
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/ethereum/go-memusage/internal/testlog"
	"github.com/ethereum/go-memusage/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape interface{ isShape() }

type circle struct{ r float64 }

func (circle) isShape() {}

type polygon struct{ pts []int64 }

func (*polygon) isShape() {}

var shapeCalls atomic.Int64

func sizeOfShape(obj *shape, t Tracker) uintptr {
	shapeCalls.Add(1)
	size := unsafe.Sizeof(*obj)
	switch v := (*obj).(type) {
	case circle:
		size += SizeOfVal(&v, t)
	case *polygon:
		size += ExtraOf(&v, t)
	}
	return size
}

func init() {
	RegisterUnion(sizeOfShape)
}

func TestRegisteredUnion(t *testing.T) {
	testlog.Root(t, log.LvlTrace)

	shapes := []shape{circle{1}, &polygon{pts: []int64{1, 2}}, nil}
	before := shapeCalls.Load()
	size := SizeOf(&shapes)
	assert.Equal(t, int64(3), shapeCalls.Load()-before)

	want := 3*w + // slice header
		(2*w + 8) + // boxed circle
		(2*w + (3*w + 2*8)) + // polygon behind its pointer
		2*w // nil
	assert.Equal(t, want, size)
}

type lateUnion interface{ isLate() }

type lateVariant struct{}

func (lateVariant) isLate() {}

func TestRegisterUnionReplacesSizer(t *testing.T) {
	values := []lateUnion{lateVariant{}}
	assert.Equal(t, 3*w+2*w, SizeOf(&values))

	RegisterUnion(func(obj *lateUnion, t Tracker) uintptr {
		return unsafe.Sizeof(*obj) + 100
	})
	assert.Equal(t, 3*w+2*w+100, SizeOf(&values))
}

func TestRegisterUnionNonInterface(t *testing.T) {
	assert.Panics(t, func() {
		RegisterUnion(func(*int, Tracker) uintptr { return 0 })
	})
}

func TestIsDirectIface(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{typeOf[*int](), true},
		{typeOf[map[int]int](), true},
		{typeOf[chan int](), true},
		{typeOf[func()](), true},
		{typeOf[unsafe.Pointer](), true},
		{typeOf[struct{ p *int }](), true},
		{typeOf[[1]*int](), true},
		{typeOf[struct{ s struct{ p *int } }](), true},
		{typeOf[struct {
			p *int
			x int
		}](), false},
		{typeOf[[2]*int](), false},
		{typeOf[int](), false},
		{typeOf[string](), false},
		{typeOf[[]int](), false},
	}
	for i, tt := range tests {
		if have := isDirectIface(tt.typ); have != tt.want {
			t.Errorf("test %d: isDirectIface(%v) = %v, want %v", i, tt.typ, have, tt.want)
		}
	}
}

func TestConcurrentFirstUse(t *testing.T) {
	type fresh struct {
		a []string
		b map[int]*int
	}
	v := fresh{a: []string{"x"}, b: map[int]*int{1: new(int)}}

	var (
		wg    sync.WaitGroup
		sizes = make([]uintptr, 16)
	)
	for i := range sizes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sizes[i] = SizeOf(&v)
		}(i)
	}
	wg.Wait()
	for i, size := range sizes {
		assert.Equal(t, sizes[0], size, "walk %d", i)
	}
}

func TestSizerCreationLogged(t *testing.T) {
	rec := new(testlog.Recorder)
	prev := log.Root().GetHandler()
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlTrace, rec))
	defer log.Root().SetHandler(prev)

	type neverMeasured struct{ s string }
	SizeOf(&neverMeasured{})

	r := rec.Find("Created memory sizer")
	require.NotNil(t, r, "have messages %v", rec.Messages())
	assert.Equal(t, log.LvlTrace, r.Lvl)
}

func TestLeafTypes(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		leaf bool
	}{
		{typeOf[int64](), true},
		{typeOf[[4]uint64](), true},
		{typeOf[padding](), true},
		{typeOf[struct{}](), true},
		{typeOf[[0]string](), true},
		{typeOf[string](), false},
		{typeOf[[2]string](), false},
		{typeOf[listNode](), false},
		{typeOf[Box[int]](), false},
		{typeOf[any](), false},
	}
	for i, tt := range tests {
		if have := cachedSizer(tt.typ).leaf; have != tt.leaf {
			t.Errorf("test %d: %v leaf = %v, want %v", i, tt.typ, have, tt.leaf)
		}
	}
}
