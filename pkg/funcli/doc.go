// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package funcli auto-generates a command-line interface from documented Go
// functions.
//
// A registry is built by cross-referencing scanned documentation (see
// pkg/docindex) against the callables the caller exports. Dispatch merges up
// to four argument sources into the positional argument vector a function
// expects, in strict precedence order:
//
//  1. import payload (JSON or YAML, inline string or file) fills bulk values
//  2. internal args (caller-injected, hidden from the CLI) overwrite them
//  3. positional CLI arguments fill the remaining unset parameters in order
//  4. named --option values overwrite everything they target
//
// # Basic usage
//
// Commands come from doc comments:
//
//	// Add returns the sum of two numbers.
//	//
//	//cli:param a number left operand
//	//cli:param b number=0 right operand
//	func Add(a, b float64) float64 { return a + b }
//
//	reg, err := funcli.Build(funcli.Source{
//	    Paths: []string{"calc.go"},
//	    Funcs: map[string]any{"Add": Add},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := reg.Run(ctx, funcli.Config{Name: "calc"}, os.Args[1:])
//
// # Groups
//
// BuildGroups builds one registry sub-map per named group; dispatch then
// takes a leading group token ("calc add 2 3" instead of "add 2 3").
//
// # Batch dispatch
//
// An import payload that decodes to an array of objects runs the command
// once per element. Sequential mode aborts the remaining items on the first
// failure; Config.Parallel runs all invocations concurrently and collects
// results in input order.
//
// # Help and suggestions
//
// An unresolved command is not an error: the dispatcher prints the full
// command listing and, when a search token exists, a nearest-by-edit-distance
// "did you mean" suggestion. --help with a resolved command prints its
// parameter usage instead.
package funcli
