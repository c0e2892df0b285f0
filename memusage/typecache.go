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
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ethereum/go-memusage/log"
)

var (
	typeCacheMutex sync.RWMutex
	typeCache      = make(map[reflect.Type]*typeinfo)
)

// typeinfo holds the sizers of a type.
type typeinfo struct {
	deep  sizer // flat size plus owned memory
	extra sizer // owned memory only

	// leaf is set for types that never own memory beyond their inline bytes.
	// Their deep size is always the flat size.
	leaf bool
}

// sizer measures the value v. The value is always addressable.
type sizer func(v reflect.Value, t Tracker) uintptr

var (
	memoryUsageInterface = reflect.TypeOf((*MemoryUsage)(nil)).Elem()
	opaqueInterface      = reflect.TypeOf((*opaque)(nil)).Elem()
)

func cachedSizer(typ reflect.Type) *typeinfo {
	typeCacheMutex.RLock()
	info := typeCache[typ]
	typeCacheMutex.RUnlock()
	if info != nil {
		return info
	}
	// not in the cache, need to generate info for this type.
	typeCacheMutex.Lock()
	defer typeCacheMutex.Unlock()
	return cachedSizer1(typ)
}

func cachedSizer1(typ reflect.Type) *typeinfo {
	info := typeCache[typ]
	if info != nil {
		// another goroutine got the write lock first
		return info
	}
	// put a dummy value into the cache before generating.
	// if the generator tries to lookup itself, it will get
	// the dummy value and won't call itself recursively.
	info = new(typeinfo)
	typeCache[typ] = info
	info.generate(typ)
	return info
}

// RegisterUnion installs the sizer of the interface type U. Sizers generated by
// memusagegen for sealed interfaces are registered from init functions, so
// that interface values of type U are measured with them at every depth.
func RegisterUnion[U any](fn func(v *U, t Tracker) uintptr) {
	typ := typeOf[U]()
	if typ.Kind() != reflect.Interface {
		panic(fmt.Sprintf("memusage: RegisterUnion of non-interface type %v", typ))
	}
	deep := func(v reflect.Value, t Tracker) uintptr {
		return fn((*U)(unsafe.Pointer(v.UnsafeAddr())), t)
	}
	flat := typ.Size()

	typeCacheMutex.Lock()
	defer typeCacheMutex.Unlock()
	info := typeCache[typ]
	if info == nil {
		info = new(typeinfo)
		typeCache[typ] = info
	}
	info.leaf = false
	info.deep = deep
	info.extra = func(v reflect.Value, t Tracker) uintptr {
		return checkedExtra(typ, deep(v, t), flat)
	}
	log.Debug("Registered union sizer", "type", typ)
}

func (i *typeinfo) generate(typ reflect.Type) {
	kind := typ.Kind()
	switch {
	case kind != reflect.Interface && reflect.PointerTo(typ).Implements(opaqueInterface) && !hasEmbedded(typ):
		i.deep, i.extra = makeOpaqueSizer(typ)
	case kind != reflect.Interface && reflect.PointerTo(typ).Implements(memoryUsageInterface) && !promotesSizeOfVal(typ):
		i.deep, i.extra = makeMethodSizer(typ)
	default:
		i.leaf, i.deep, i.extra = makeKindSizer(typ)
	}
	log.Trace("Created memory sizer", "type", typ, "leaf", i.leaf)
}

func makeKindSizer(typ reflect.Type) (leaf bool, deep, extra sizer) {
	kind := typ.Kind()
	switch {
	case kind == reflect.String:
		deep, extra = makeStringSizer(typ)
	case kind == reflect.Pointer:
		deep, extra = makePtrSizer(typ)
	case kind == reflect.UnsafePointer || kind == reflect.Chan || kind == reflect.Func:
		deep, extra = makeAddressSizer()
	case kind == reflect.Array:
		return makeArraySizer(typ)
	case kind == reflect.Slice:
		deep, extra = makeSliceSizer(typ)
	case kind == reflect.Struct:
		return makeStructSizer(typ)
	case kind == reflect.Map:
		deep, extra = makeMapSizer(typ)
	case kind == reflect.Interface:
		deep, extra = makeInterfaceSizer(typ)
	default:
		// bool, numbers
		deep, extra = makeFlatSizer(typ)
		leaf = true
	}
	return leaf, deep, extra
}

func zeroSizer(reflect.Value, Tracker) uintptr {
	return 0
}

func makeFlatSizer(typ reflect.Type) (deep, extra sizer) {
	size := typ.Size()
	deep = func(reflect.Value, Tracker) uintptr { return size }
	return deep, zeroSizer
}

func makeMethodSizer(typ reflect.Type) (deep, extra sizer) {
	flat := typ.Size()
	deep = func(v reflect.Value, t Tracker) uintptr {
		return pointerTo(v).Interface().(MemoryUsage).SizeOfVal(t)
	}
	extra = func(v reflect.Value, t Tracker) uintptr {
		return checkedExtra(typ, deep(v, t), flat)
	}
	return deep, extra
}

func makeOpaqueSizer(typ reflect.Type) (deep, extra sizer) {
	deep = func(v reflect.Value, t Tracker) uintptr {
		return opaqueSize(pointerTo(v).Interface().(opaque).address(), t)
	}
	extra = func(v reflect.Value, t Tracker) uintptr {
		opaqueSize(pointerTo(v).Interface().(opaque).address(), t)
		return 0
	}
	return deep, extra
}

func makeStringSizer(typ reflect.Type) (deep, extra sizer) {
	size := typ.Size()
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + uintptr(v.Len())
	}
	extra = func(v reflect.Value, t Tracker) uintptr {
		return uintptr(v.Len())
	}
	return deep, extra
}

func makePtrSizer(typ reflect.Type) (deep, extra sizer) {
	var (
		size = typ.Size()
		elem = cachedSizer1(typ.Elem())
	)
	extra = func(v reflect.Value, t Tracker) uintptr {
		if v.IsNil() || !t.Track(v.UnsafePointer()) {
			return 0
		}
		return elem.deep(v.Elem(), t)
	}
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + extra(v, t)
	}
	return deep, extra
}

// makeAddressSizer handles values that are addresses of memory the walk cannot
// interpret: unsafe pointers, channels and functions.
func makeAddressSizer() (deep, extra sizer) {
	deep = func(v reflect.Value, t Tracker) uintptr {
		if t.Track(v.UnsafePointer()) {
			return PointerSize
		}
		return 0
	}
	extra = func(v reflect.Value, t Tracker) uintptr {
		t.Track(v.UnsafePointer())
		return 0
	}
	return deep, extra
}

func makeArraySizer(typ reflect.Type) (leaf bool, deep, extra sizer) {
	var (
		size = typ.Size()
		n    = typ.Len()
		elem = cachedSizer1(typ.Elem())
	)
	if n == 0 || elem.leaf {
		deep, extra = makeFlatSizer(typ)
		return true, deep, extra
	}
	extra = func(v reflect.Value, t Tracker) uintptr {
		var sum uintptr
		for i := 0; i < n; i++ {
			sum += elem.extra(v.Index(i), t)
		}
		return sum
	}
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + extra(v, t)
	}
	return false, deep, extra
}

func makeSliceSizer(typ reflect.Type) (deep, extra sizer) {
	var (
		size     = typ.Size()
		elemSize = typ.Elem().Size()
		elem     = cachedSizer1(typ.Elem())
	)
	extra = func(v reflect.Value, t Tracker) uintptr {
		n := v.Len()
		if n == 0 || !trackArray(t, v.UnsafePointer()) {
			return 0
		}
		if elem.leaf {
			return uintptr(n) * elemSize
		}
		var sum uintptr
		for i := 0; i < n; i++ {
			sum += elem.deep(v.Index(i), t)
		}
		return sum
	}
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + extra(v, t)
	}
	return deep, extra
}

type field struct {
	index int
	info  *typeinfo
}

func makeStructSizer(typ reflect.Type) (leaf bool, deep, extra sizer) {
	var (
		size   = typ.Size()
		fields []field
	)
	for i := 0; i < typ.NumField(); i++ {
		info := cachedSizer1(typ.Field(i).Type)
		if !info.leaf {
			fields = append(fields, field{i, info})
		}
	}
	if len(fields) == 0 {
		deep, extra = makeFlatSizer(typ)
		return true, deep, extra
	}
	extra = func(v reflect.Value, t Tracker) uintptr {
		var sum uintptr
		for _, f := range fields {
			sum += f.info.extra(v.Field(f.index), t)
		}
		return sum
	}
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + extra(v, t)
	}
	return false, deep, extra
}

func makeMapSizer(typ reflect.Type) (deep, extra sizer) {
	var (
		size      = typ.Size()
		entrySize = typ.Key().Size() + typ.Elem().Size()
		key       = cachedSizer1(typ.Key())
		elem      = cachedSizer1(typ.Elem())
	)
	extra = func(v reflect.Value, t Tracker) uintptr {
		if v.IsNil() || !t.Track(v.UnsafePointer()) {
			return 0
		}
		if key.leaf && elem.leaf {
			return uintptr(v.Len()) * entrySize
		}
		var sum uintptr
		iter := unlocked(v).MapRange()
		for iter.Next() {
			sum += entrySizeOf(key, iter.Key(), t)
			sum += entrySizeOf(elem, iter.Value(), t)
		}
		return sum
	}
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + extra(v, t)
	}
	return deep, extra
}

func entrySizeOf(info *typeinfo, v reflect.Value, t Tracker) uintptr {
	if info.leaf {
		return v.Type().Size()
	}
	return info.deep(addressable(v), t)
}

func makeInterfaceSizer(typ reflect.Type) (deep, extra sizer) {
	size := typ.Size()
	extra = func(v reflect.Value, t Tracker) uintptr {
		if v.IsNil() {
			return 0
		}
		payload := unlocked(v).Elem()
		info := cachedSizer(payload.Type())
		if isDirectIface(payload.Type()) {
			// The interface word holds the payload itself.
			return info.extra(addressable(payload), t)
		}
		return info.deep(addressable(payload), t)
	}
	deep = func(v reflect.Value, t Tracker) uintptr {
		return size + extra(v, t)
	}
	return deep, extra
}

// promotesSizeOfVal reports whether the SizeOfVal method of typ is promoted from
// an embedded field. Such a method only accounts for the embedded field, so the
// struct is measured field by field instead.
func promotesSizeOfVal(typ reflect.Type) bool {
	if !embedsMemoryUsage(typ) {
		return false
	}
	m, ok := typ.MethodByName("SizeOfVal")
	if !ok {
		m, _ = reflect.PointerTo(typ).MethodByName("SizeOfVal")
	}
	fn := runtime.FuncForPC(m.Func.Pointer())
	if fn == nil {
		return false
	}
	// The compiler emits promotion wrappers without a source position.
	file, _ := fn.FileLine(fn.Entry())
	return file == "<autogenerated>"
}

// embedsMemoryUsage reports whether an embedded field of the struct type typ
// provides a SizeOfVal method.
func embedsMemoryUsage(typ reflect.Type) bool {
	if typ.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() != reflect.Pointer && ft.Kind() != reflect.Interface {
			ft = reflect.PointerTo(ft)
		}
		if _, ok := ft.MethodByName("SizeOfVal"); ok {
			return true
		}
	}
	return false
}

func hasEmbedded(typ reflect.Type) bool {
	if typ.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Anonymous {
			return true
		}
	}
	return false
}

// isDirectIface reports whether values of typ are stored directly in the data
// word of an interface rather than boxed on the heap.
func isDirectIface(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	case reflect.Struct:
		return typ.NumField() == 1 && isDirectIface(typ.Field(0).Type)
	case reflect.Array:
		return typ.Len() == 1 && isDirectIface(typ.Elem())
	}
	return false
}

// unlocked returns a view of the addressable value v that can be read even if
// v was reached through unexported fields.
func unlocked(v reflect.Value) reflect.Value {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// pointerTo returns a pointer to the addressable value v.
func pointerTo(v reflect.Value) reflect.Value {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr()))
}

// addressable copies v into fresh memory unless it is addressable already.
// Map entries and interface payloads are measured through such copies.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}
