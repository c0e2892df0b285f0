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
	"go/types"
	"os"
	"runtime"
	"strconv"

	"github.com/ethereum/go-memusage/common"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Print the types of a package that memusagegen can handle",
	Description: `
The inspect command loads the package selected by --dir and prints every
struct and interface type with its shape, the number of fields or variants
and its flat size on the host architecture.`,
	Action: inspect,
}

func inspect(ctx *cli.Context) error {
	pkg, err := loadPackage(ctx.String(dirFlag.Name))
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Shape", "Members", "Flat size"})
	table.AppendBulk(inspectPackage(pkg, types.SizesFor("gc", runtime.GOARCH)))
	table.Render()
	return nil
}

// inspectPackage returns one row per struct and interface type in pkg.
func inspectPackage(pkg *types.Package, sizes types.Sizes) [][]string {
	var (
		scope = pkg.Scope()
		rows  [][]string
	)
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		var shape, members string
		switch u := named.Underlying().(type) {
		case *types.Struct:
			shape, members = "aggregate", strconv.Itoa(u.NumFields())
		case *types.Interface:
			switch {
			case named.TypeParams().Len() > 0:
				shape, members = "generic interface", "-"
			case !isSealed(named, u):
				shape, members = "open interface", "-"
			default:
				shape, members = "union", strconv.Itoa(len(unionVariants(named, u)))
			}
		default:
			continue
		}
		size := "-"
		if named.TypeParams().Len() == 0 {
			size = common.StorageSize(sizes.Sizeof(named)).String()
		}
		rows = append(rows, []string{name, shape, members, size})
	}
	return rows
}
