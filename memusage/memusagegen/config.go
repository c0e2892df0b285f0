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
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/ethereum/go-memusage/log"
	"github.com/naoina/toml"
	"golang.org/x/sync/errgroup"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// batchConfig lists the types of one package to generate code for.
//
//	Dir = "."
//
//	[[Types]]
//	Name = "Node"
//	Out = "gen_node_memusage.go"
type batchConfig struct {
	Dir   string // package directory, relative to the config file
	Types []batchType
}

type batchType struct {
	Name string
	Out  string // output file, relative to Dir
}

func loadBatchConfig(file string) (*batchConfig, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := new(batchConfig)
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return nil, err
	}
	if len(cfg.Types) == 0 {
		return nil, fmt.Errorf("%s: no types listed", file)
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(file), cfg.Dir)
	}
	for i, t := range cfg.Types {
		if t.Name == "" || t.Out == "" {
			return nil, fmt.Errorf("%s: type entry %d needs Name and Out", file, i)
		}
		if !filepath.IsAbs(t.Out) {
			cfg.Types[i].Out = filepath.Join(cfg.Dir, t.Out)
		}
	}
	return cfg, nil
}

// run generates all listed types from a single load of the package and writes
// the outputs concurrently.
func (cfg *batchConfig) run() error {
	pkg, err := loadPackage(cfg.Dir)
	if err != nil {
		return err
	}
	var g errgroup.Group
	for _, t := range cfg.Types {
		t := t
		g.Go(func() error {
			code, err := generateType(pkg, t.Name)
			if err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
			return writeOutput(t.Out, code)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Generated memory accounting", "package", pkg.Path(), "types", len(cfg.Types))
	return nil
}
