// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The funcli command inspects Go source files and prints the CLI command
// index that funcli.Build would derive from them: one entry per exported,
// documented function with its parameters, defaults, and description.
//
// Usage:
//
//	funcli [-json] [-C dir] <file-or-dir>...
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/funcli/funcli/pkg/docindex"
	"github.com/funcli/funcli/pkg/pkgmeta"
	"golang.org/x/term"
)

var (
	jsonOut = flag.Bool("json", false, "emit the command index as JSON")
	projDir = flag.String("C", ".", "directory to read the funcli.toml manifest from")
)

func main() {
	log.SetFlags(0)
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-json] [-C dir] <file-or-dir>...\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	paths, err := expandPaths(flag.Args())
	if err != nil {
		log.Fatal(err)
	}
	funcs, err := docindex.Scan(paths...)
	if err != nil {
		log.Fatal(err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(funcs); err != nil {
			log.Fatal(err)
		}
		return
	}

	meta := pkgmeta.Read(*projDir)
	printIndex(meta, funcs)
}

// expandPaths resolves directory arguments to the non-test Go files directly
// inside them. File arguments pass through untouched.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") || strings.HasSuffix(e.Name(), "_test.go") {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fs.ErrNotExist
	}
	return paths, nil
}

func printIndex(meta pkgmeta.Meta, funcs []docindex.Func) {
	color.NoColor = color.NoColor || !term.IsTerminal(int(os.Stdout.Fd()))
	heading := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	if meta.Name != "" {
		banner := meta.Name
		if meta.Version != "" {
			banner += " " + meta.Version
		}
		if meta.Description != "" {
			banner += " - " + meta.Description
		}
		fmt.Println(banner)
		fmt.Println()
	}

	if len(funcs) == 0 {
		fmt.Println("no documented functions found")
		return
	}
	for _, fn := range funcs {
		heading.Println(fn.Name)
		dim.Printf("  %s:%d\n", fn.File, fn.Line)
		if fn.Description != "" {
			fmt.Printf("  %s\n", strings.ReplaceAll(fn.Description, "\n", "\n  "))
		}
		for _, p := range fn.Params {
			fmt.Printf("    %-20s %s\n", p.Name, paramSummary(p))
		}
		fmt.Println()
	}
}

func paramSummary(p docindex.Param) string {
	s := strings.Join(p.Types, "|")
	if p.HasDefault {
		if b, err := json.Marshal(p.Default); err == nil {
			s += " = " + string(b)
		}
	}
	if p.Desc != "" {
		s += "  " + p.Desc
	}
	return s
}
