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
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"go/types"
	"strings"

	"github.com/ethereum/go-memusage/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// buildContext keeps state across the generation of a single type.
type buildContext struct {
	topType *types.Named // the type we're generating methods for
	owning  map[types.Type]bool
}

func newBuildContext() *buildContext {
	return &buildContext{owning: make(map[types.Type]bool)}
}

// genContext tracks the imports of the generated file.
type genContext struct {
	inPackage *types.Package
	imports   map[string]struct{}
}

func newGenContext(inPackage *types.Package) *genContext {
	return &genContext{
		inPackage: inPackage,
		imports:   make(map[string]struct{}),
	}
}

func (ctx *genContext) addImport(path string) {
	if path == ctx.inPackage.Path() {
		return // avoid importing the package that we're generating in.
	}
	ctx.imports[path] = struct{}{}
}

// importsList returns all packages that need to be imported.
func (ctx *genContext) importsList() []string {
	imp := maps.Keys(ctx.imports)
	slices.Sort(imp)
	return imp
}

// qualify is the types.Qualifier used for printing types.
func (ctx *genContext) qualify(pkg *types.Package) string {
	if pkg.Path() == ctx.inPackage.Path() {
		return ""
	}
	ctx.addImport(pkg.Path())
	return pkg.Name()
}

// memusage returns the reference to the named identifier of package memusage.
func (ctx *genContext) memusage(name string) string {
	if ctx.inPackage.Path() == pathOfPackageMemusage {
		return name
	}
	ctx.addImport(pathOfPackageMemusage)
	return "memusage." + name
}

// ShapeError is returned for types that generated code cannot measure.
type ShapeError struct {
	Type   string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

func shapeError(typ *types.Named, format string, args ...interface{}) error {
	return &ShapeError{Type: typ.Obj().Name(), Reason: fmt.Sprintf(format, args...)}
}

// generate creates the SizeOfVal implementation of typ.
func (bctx *buildContext) generate(typ *types.Named) ([]byte, error) {
	bctx.topType = typ
	if declaresMethod(typ, "SizeOfVal") {
		return nil, shapeError(typ, "type already declares SizeOfVal")
	}

	var (
		pkg  = typ.Obj().Pkg()
		ctx  = newGenContext(pkg)
		body bytes.Buffer
		err  error
	)
	switch shape := typ.Underlying().(type) {
	case *types.Struct:
		bctx.genAggregate(&body, ctx, typ, shape)
	case *types.Interface:
		err = bctx.genUnion(&body, ctx, typ, shape)
	default:
		err = shapeError(typ, "not a struct or interface type")
	}
	if err != nil {
		return nil, err
	}
	ctx.addImport("unsafe")

	var b bytes.Buffer
	fmt.Fprintf(&b, "package %s\n\n", pkg.Name())
	fmt.Fprintln(&b, "import (")
	for _, imp := range ctx.importsList() {
		fmt.Fprintf(&b, "\t%q\n", imp)
	}
	fmt.Fprintln(&b, ")")
	fmt.Fprintln(&b)
	b.Write(body.Bytes())

	source := b.Bytes()
	fmted, err := format.Source(source)
	if err != nil {
		panic(fmt.Errorf("can't gofmt generated code: %v\n%s", err, source))
	}
	return fmted, nil
}

// genAggregate writes the SizeOfVal method of a struct type. Fields that
// cannot own memory beyond their inline bytes are covered by the flat size.
func (bctx *buildContext) genAggregate(b *bytes.Buffer, ctx *genContext, typ *types.Named, st *types.Struct) {
	var fields []string
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Name() == "_" {
			continue
		}
		if !bctx.ownsMemory(f.Type()) {
			log.Trace("Pruned field without indirection", "type", typ.Obj().Name(), "field", f.Name())
			continue
		}
		fields = append(fields, f.Name())
	}

	fmt.Fprintf(b, "func (obj *%s) SizeOfVal(t %s) uintptr {\n", receiverType(typ), ctx.memusage("Tracker"))
	if len(fields) == 0 {
		fmt.Fprint(b, "\treturn unsafe.Sizeof(*obj)\n}\n")
		return
	}
	fmt.Fprint(b, "\tsize := unsafe.Sizeof(*obj)\n")
	for _, name := range fields {
		fmt.Fprintf(b, "\tsize += %s(&obj.%s, t)\n", ctx.memusage("ExtraOf"), name)
	}
	fmt.Fprint(b, "\treturn size\n}\n")
	log.Debug("Generated aggregate sizer", "type", typ.Obj().Name(), "fields", len(fields), "pruned", st.NumFields()-len(fields))
}

// genUnion writes the sizer function of a sealed interface type and the init
// function registering it.
func (bctx *buildContext) genUnion(b *bytes.Buffer, ctx *genContext, typ *types.Named, iface *types.Interface) error {
	if typ.TypeParams().Len() > 0 {
		return shapeError(typ, "generic interface types are not supported")
	}
	if !isSealed(typ, iface) {
		return shapeError(typ, "interface is not sealed, its variants cannot be enumerated")
	}

	var (
		name     = typ.Obj().Name()
		fn       = unionFuncName(name)
		variants = unionVariants(typ, iface)
	)
	// Types of other packages can satisfy the interface by embedding a variant
	// or the interface itself, they are measured by their dynamic type.
	fmt.Fprintf(b, "func %s(obj *%s, t %s) uintptr {\n", fn, name, ctx.memusage("Tracker"))
	if len(variants) == 0 {
		fmt.Fprintf(b, "\treturn unsafe.Sizeof(*obj) + %s(*obj, t)\n}\n", ctx.memusage("ExtraOfAny"))
	} else {
		fmt.Fprint(b, "\tsize := unsafe.Sizeof(*obj)\n")
		fmt.Fprint(b, "\tswitch v := (*obj).(type) {\n")
		for _, v := range variants {
			fmt.Fprintf(b, "\tcase %s:\n", types.TypeString(v, ctx.qualify))
			if isDirectIface(v) {
				// stored in the interface word, only its referents count
				fmt.Fprintf(b, "\t\tsize += %s(&v, t)\n", ctx.memusage("ExtraOf"))
			} else {
				fmt.Fprintf(b, "\t\tsize += %s(&v, t)\n", ctx.memusage("SizeOfVal"))
			}
		}
		fmt.Fprintf(b, "\tdefault:\n\t\tsize += %s(v, t)\n", ctx.memusage("ExtraOfAny"))
		fmt.Fprint(b, "\t}\n\treturn size\n}\n")
	}
	fmt.Fprintf(b, "\nfunc init() {\n\t%s(%s)\n}\n", ctx.memusage("RegisterUnion"), fn)
	log.Debug("Generated union sizer", "type", name, "variants", len(variants))
	return nil
}

// receiverType returns the receiver type expression of typ, including its type
// parameters.
func receiverType(typ *types.Named) string {
	name := typ.Obj().Name()
	params := typ.TypeParams()
	if params.Len() == 0 {
		return name
	}
	names := make([]string, params.Len())
	for i := range names {
		names[i] = params.At(i).Obj().Name()
	}
	return name + "[" + strings.Join(names, ", ") + "]"
}

// unionFuncName returns the name of the sizer function generated for the
// interface type name. It is exported if the type is.
func unionFuncName(name string) string {
	if token.IsExported(name) {
		return "SizeOf" + name
	}
	return "sizeOf" + strings.ToUpper(name[:1]) + name[1:]
}
