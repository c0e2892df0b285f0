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

package main

import (
	"fmt"
	"go/types"
	"reflect"
)

// typeReflectKind gives the reflect.Kind that represents typ.
func typeReflectKind(typ types.Type) reflect.Kind {
	switch typ := typ.(type) {
	case *types.Basic:
		k := typ.Kind()
		if k >= types.Bool && k <= types.Complex128 {
			// value order matches for Bool..Complex128
			return reflect.Bool + reflect.Kind(k-types.Bool)
		}
		if k == types.String {
			return reflect.String
		}
		if k == types.UnsafePointer {
			return reflect.UnsafePointer
		}
		panic(fmt.Errorf("unhandled BasicKind %v", k))
	case *types.Array:
		return reflect.Array
	case *types.Chan:
		return reflect.Chan
	case *types.Interface:
		return reflect.Interface
	case *types.Map:
		return reflect.Map
	case *types.Pointer:
		return reflect.Ptr
	case *types.Signature:
		return reflect.Func
	case *types.Slice:
		return reflect.Slice
	case *types.Struct:
		return reflect.Struct
	default:
		panic(fmt.Errorf("unhandled type %T", typ))
	}
}

// ownsMemory reports whether values of typ can own memory beyond their inline
// bytes. The answer mirrors the leaf types of the reflective sizers: scalars,
// and arrays and structs made only of them, are fully covered by the flat size.
func (bctx *buildContext) ownsMemory(typ types.Type) bool {
	if v, ok := bctx.owning[typ]; ok {
		return v
	}
	// Types can only refer to themselves through an indirection, which owns
	// memory anyway.
	bctx.owning[typ] = true
	v := bctx.ownsMemory1(typ)
	bctx.owning[typ] = v
	return v
}

func (bctx *buildContext) ownsMemory1(typ types.Type) bool {
	if _, ok := typ.(*types.TypeParam); ok {
		return true
	}
	if hasSizeOfVal(typ) {
		return true
	}
	switch u := resolveUnderlying(typ).(type) {
	case *types.Basic:
		kind := typeReflectKind(u)
		return kind == reflect.String || kind == reflect.UnsafePointer
	case *types.Array:
		return u.Len() > 0 && bctx.ownsMemory(u.Elem())
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if bctx.ownsMemory(u.Field(i).Type()) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// isDirectIface reports whether values of typ are stored directly in the data
// word of an interface value.
func isDirectIface(typ types.Type) bool {
	u := resolveUnderlying(typ)
	switch typeReflectKind(u) {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	case reflect.Struct:
		st := u.(*types.Struct)
		return st.NumFields() == 1 && isDirectIface(st.Field(0).Type())
	case reflect.Array:
		arr := u.(*types.Array)
		return arr.Len() == 1 && isDirectIface(arr.Elem())
	}
	return false
}

// isSealed reports whether only types of the declaring package can implement
// the interface, i.e. it has an unexported method of that package.
func isSealed(typ *types.Named, iface *types.Interface) bool {
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		if !m.Exported() && m.Pkg() == typ.Obj().Pkg() {
			return true
		}
	}
	return false
}

// unionVariants returns the types of the package that implement the sealed
// interface, in name order. A type whose value implements the interface is
// listed both as value and as pointer.
func unionVariants(typ *types.Named, iface *types.Interface) []types.Type {
	var (
		scope    = typ.Obj().Pkg().Scope()
		variants []types.Type
	)
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		v, ok := tn.Type().(*types.Named)
		if !ok || types.IsInterface(v) || v.TypeParams().Len() > 0 {
			continue
		}
		switch {
		case types.Implements(v, iface):
			variants = append(variants, v, types.NewPointer(v))
		case types.Implements(types.NewPointer(v), iface):
			variants = append(variants, types.NewPointer(v))
		}
	}
	return variants
}

// declaresMethod reports whether typ declares a method of the given name
// itself, not through embedding.
func declaresMethod(typ *types.Named, name string) bool {
	for i := 0; i < typ.NumMethods(); i++ {
		if typ.Method(i).Name() == name {
			return true
		}
	}
	return false
}

// hasSizeOfVal reports whether typ or a pointer to it has a SizeOfVal method,
// declared or promoted.
func hasSizeOfVal(typ types.Type) bool {
	named, ok := typ.(*types.Named)
	if !ok {
		return false
	}
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(named), true, named.Obj().Pkg(), "SizeOfVal")
	_, ok = obj.(*types.Func)
	return ok
}

func resolveUnderlying(typ types.Type) types.Type {
	for {
		t := typ.Underlying()
		if t == typ {
			return t
		}
		typ = t
	}
}
