// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command calc is a small demonstration of building a CLI from documented
// functions. Every exported, documented function below becomes a command;
// run it with no arguments to see the generated help.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/funcli/funcli/pkg/funcli"
	"github.com/funcli/funcli/pkg/pkgmeta"
)

// Add returns the sum of two numbers.
//
//cli:param a number left operand
//cli:param b number=0 right operand
func Add(a, b float64) float64 { return a + b }

// Scale multiplies every value by a factor.
//
//cli:param values array the numbers to scale
//cli:param opts.factor number=2 multiplier
func Scale(values []float64, opts map[string]any) []float64 {
	factor := 2.0
	if f, ok := opts["factor"].(float64); ok {
		factor = f
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

// Upper converts text to upper case.
func Upper(ctx context.Context, text string) string { return strings.ToUpper(text) }

func main() {
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Dir(file)

	reg, err := funcli.Build(funcli.Source{
		Paths: []string{file},
		Funcs: map[string]any{
			"Add":   Add,
			"Scale": Scale,
			"Upper": Upper,
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	meta := pkgmeta.Read(dir)
	args := os.Args[1:]
	results, err := reg.Run(context.Background(), funcli.Config{
		Name:        meta.Name,
		Description: meta.Description,
		Version:     meta.Version,
	}, args)
	if err != nil {
		log.Fatal(err)
	}
	// With -j Run already wrote the results as JSON.
	if slices.Contains(args, "-j") || slices.Contains(args, "--json") {
		return
	}
	for _, r := range results {
		fmt.Println(r)
	}
}
