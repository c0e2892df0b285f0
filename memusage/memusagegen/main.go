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

// memusagegen generates SizeOfVal implementations for struct types and sizer
// functions for sealed interface types.
//
// Usage:
//
//	//go:generate go run github.com/ethereum/go-memusage/memusage/memusagegen -type Node -out gen_node_memusage.go
package main

import (
	"bytes"
	"errors"
	"fmt"
	"go/types"
	"io"
	"os"

	"github.com/ethereum/go-memusage/internal/flags"
	"github.com/ethereum/go-memusage/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"golang.org/x/tools/go/packages"
)

const (
	pathOfPackageMemusage = "github.com/ethereum/go-memusage/memusage"

	// buildTag excludes generated files when loading the input package, so that
	// stale output never prevents the package from type checking.
	buildTag = "nomemusagegen"
)

var (
	dirFlag = &flags.DirectoryFlag{
		Name:  "dir",
		Usage: "Input package directory",
		Value: flags.DirectoryString("."),
	}
	typeFlag = &cli.StringFlag{
		Name:  "type",
		Usage: "Type to generate the memory accounting for",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Output file (default is stdout)",
		Value: "-",
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML file listing the types to generate",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: int(log.LvlInfo),
	}
)

var app = flags.NewApp("memory accounting code generator")

func init() {
	app.Flags = []cli.Flag{
		dirFlag,
		typeFlag,
		outFlag,
		configFlag,
		verbosityFlag,
	}
	app.Commands = []*cli.Command{
		inspectCommand,
	}
	app.Before = setupLogging
	app.Action = generate
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) error {
	var (
		output   = io.Writer(os.Stderr)
		usecolor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	handler := log.StreamHandler(output, log.TerminalFormat(usecolor))
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(ctx.Int(verbosityFlag.Name)), handler))
	return nil
}

func generate(ctx *cli.Context) error {
	if err := flags.CheckExclusive(ctx, configFlag, typeFlag); err != nil {
		return err
	}
	if file := ctx.String(configFlag.Name); file != "" {
		cfg, err := loadBatchConfig(file)
		if err != nil {
			return err
		}
		return cfg.run()
	}
	if !ctx.IsSet(typeFlag.Name) {
		return errors.New("one of --type or --config is required")
	}
	cfg := Config{
		Dir:  ctx.String(dirFlag.Name),
		Type: ctx.String(typeFlag.Name),
	}
	code, err := cfg.process()
	if err != nil {
		return err
	}
	return writeOutput(ctx.String(outFlag.Name), code)
}

// Config is the configuration of a single type generation.
type Config struct {
	Dir  string // input package directory
	Type string
}

// process generates the Go code.
func (cfg *Config) process() (code []byte, err error) {
	pkg, err := loadPackage(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return generateType(pkg, cfg.Type)
}

// loadPackage loads and type checks the package in dir.
func loadPackage(dir string) (*types.Package, error) {
	pcfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps,
		Dir:        dir,
		BuildFlags: []string{"-tags", buildTag},
	}
	ps, err := packages.Load(pcfg, ".")
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("no Go package found in %s", dir)
	}
	packages.PrintErrors(ps)

	p := ps[0]
	if len(p.Errors) > 0 {
		return nil, fmt.Errorf("package %s has errors", p.PkgPath)
	}
	log.Debug("Loaded input package", "path", p.PkgPath, "dir", dir)
	return p.Types, nil
}

// generateType generates the code of the named type in pkg, including the file
// header.
func generateType(pkg *types.Package, name string) ([]byte, error) {
	typ, err := lookupType(pkg.Scope(), name)
	if err != nil {
		return nil, fmt.Errorf("can't find %s in %s: %v", name, pkg.Path(), err)
	}
	code, err := newBuildContext().generate(typ)
	if err != nil {
		return nil, err
	}

	// Add build comments.
	// This is done here to avoid processing these lines with gofmt.
	var header bytes.Buffer
	fmt.Fprint(&header, "// Code generated by memusagegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&header, "//go:build !%s\n\n", buildTag)
	return append(header.Bytes(), code...), nil
}

func lookupType(scope *types.Scope, name string) (*types.Named, error) {
	obj := scope.Lookup(name)
	if obj == nil {
		return nil, errors.New("no such identifier")
	}
	typ, ok := obj.(*types.TypeName)
	if !ok {
		return nil, errors.New("not a type")
	}
	named, ok := typ.Type().(*types.Named)
	if !ok {
		return nil, errors.New("not a named type")
	}
	return named, nil
}

func writeOutput(out string, code []byte) error {
	if out == "-" {
		_, err := os.Stdout.Write(code)
		return err
	}
	log.Info("Writing generated code", "file", out)
	return os.WriteFile(out, code, 0644)
}
