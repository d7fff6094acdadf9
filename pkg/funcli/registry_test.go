// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeSource writes a Go source file into a temp dir and returns its path.
func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.go")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const calcSource = `package demo

// Add returns the sum of two numbers, useful when you have
// two numbers and would rather have one.
//
//cli:param a number left operand
//cli:param b number=0 right operand
func Add(a, b float64) float64 { return a + b }

// Ghost is documented but the caller exports no matching callable.
func Ghost() {}

func Undocumented(x int) int { return x }
`

func addFunc(a, b float64) float64 { return a + b }

func buildCalc(t *testing.T) *Registry {
	t.Helper()
	r, err := Build(Source{
		Paths: []string{writeSource(t, calcSource)},
		Funcs: map[string]any{"Add": addFunc},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestBuild(t *testing.T) {
	r := buildCalc(t)

	cmd, ok := r.Resolve("", "add")
	if !ok {
		t.Fatal("add command not registered")
	}
	if len(cmd.Params) != 2 {
		t.Fatalf("Params = %v, want 2 entries", cmd.Params)
	}
	if cmd.Params[0].Name != "a" || cmd.Params[1].Name != "b" {
		t.Errorf("param names = %q, %q", cmd.Params[0].Name, cmd.Params[1].Name)
	}
	if !cmd.Params[1].HasDefault || cmd.Params[1].Default != float64(0) {
		t.Errorf("b default = %v (has=%v), want 0", cmd.Params[1].Default, cmd.Params[1].HasDefault)
	}
	if strings.Contains(cmd.Description, "\n") {
		t.Errorf("description has newlines: %q", cmd.Description)
	}

	// Documented without callable, and callable without documentation, are
	// both silently excluded.
	if _, ok := r.Resolve("", "ghost"); ok {
		t.Error("ghost registered despite missing callable")
	}
	if _, ok := r.Resolve("", "undocumented"); ok {
		t.Error("undocumented function registered")
	}
}

func TestBuildRejectsNonFunction(t *testing.T) {
	_, err := Build(Source{
		Paths: []string{writeSource(t, calcSource)},
		Funcs: map[string]any{"Add": 42},
	})
	if err == nil {
		t.Fatal("Build accepted a non-function callable")
	}
}

func TestBuildGroups(t *testing.T) {
	r, err := BuildGroups(map[string]Source{
		"math": {
			Paths: []string{writeSource(t, calcSource)},
			Funcs: map[string]any{"Add": addFunc},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !r.Grouped() {
		t.Error("Grouped() = false for a named-group registry")
	}
	if _, ok := r.Resolve("math", "add"); !ok {
		t.Error("math add not registered")
	}
	if _, ok := r.Resolve("", "add"); ok {
		t.Error("grouped command resolvable without group")
	}
}

func TestKebabCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Add", "add"},
		{"AddMul", "add-mul"},
		{"JSONDump", "json-dump"},
		{"HTTPServer", "http-server"},
		{"A", "a"},
		{"ParseURL", "parse-url"},
	}
	for _, tt := range tests {
		if got := kebabCase(tt.in); got != tt.want {
			t.Errorf("kebabCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlattenDescription(t *testing.T) {
	got := flattenDescription("line one\nline   two")
	if got != "line one line two" {
		t.Errorf("flattenDescription = %q", got)
	}

	long := strings.Repeat("word ", 50)
	got = flattenDescription(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long description not truncated with ellipsis: %q", got)
	}
	if len(got) > maxDescription+3 {
		t.Errorf("truncated description too long: %d chars", len(got))
	}
}

func TestLookupFuncCaseInsensitive(t *testing.T) {
	funcs := map[string]any{"add": addFunc}
	if _, ok := lookupFunc(funcs, "Add"); !ok {
		t.Error("lookupFunc did not match case-insensitively")
	}
	if _, ok := lookupFunc(funcs, "sub"); ok {
		t.Error("lookupFunc matched a missing name")
	}
}
