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
	"testing"
	"unsafe"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type fuzzRecord struct {
	Name    string
	Tags    []string
	Scores  map[string]int32
	Parent  *fuzzRecord
	Words   [3]string
	Balance uint256.Int
	Blob    []byte
	held    any
	small   int8
}

var dumper = spew.ConfigState{Indent: " ", SortKeys: true, DisablePointerAddresses: true}

func TestPropertyNoMutation(t *testing.T) {
	f := fuzz.New().NilChance(0.2).NumElements(0, 8).MaxDepth(4)
	for i := 0; i < 200; i++ {
		var v fuzzRecord
		f.Fuzz(&v)
		v.held = v.Name
		if i%3 == 0 {
			v.held = &v.Balance
		}
		before := dumper.Sdump(v)
		snapshot := v

		SizeOf(&v)

		require.Equal(t, before, dumper.Sdump(v), "iteration %d", i)
		require.True(t, reflect.DeepEqual(snapshot, v), "iteration %d", i)
	}
}

func TestPropertyAtLeastFlat(t *testing.T) {
	f := fuzz.New().NilChance(0.3).NumElements(0, 8).MaxDepth(4)
	for i := 0; i < 200; i++ {
		var v fuzzRecord
		f.Fuzz(&v)
		v.held = v.Tags

		size := SizeOf(&v)
		require.GreaterOrEqual(t, uint64(size), uint64(unsafe.Sizeof(v)), "iteration %d", i)
		require.Equal(t, size, SizeOf(&v), "iteration %d: walk is not deterministic", i)

		extra := ExtraOf(&v, NewAddressSet())
		require.Equal(t, size-unsafe.Sizeof(v), extra, "iteration %d", i)
	}
}

func TestPropertySharedTracker(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 4).MaxDepth(3)
	for i := 0; i < 100; i++ {
		var v fuzzRecord
		f.Fuzz(&v)
		v.held = nil

		// Measuring twice with one tracker charges owned references once.
		tracker := NewAddressSet()
		first := SizeOfVal(&v, tracker)
		second := SizeOfVal(&v, tracker)
		require.LessOrEqual(t, uint64(second), uint64(first), "iteration %d", i)
		require.GreaterOrEqual(t, uint64(second), uint64(unsafe.Sizeof(v)), "iteration %d", i)
	}
}
