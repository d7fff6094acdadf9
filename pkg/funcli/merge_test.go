// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func specs(names ...string) []ParamSpec {
	out := make([]ParamSpec, 0, len(names))
	for _, name := range names {
		out = append(out, ParamSpec{Name: name, Types: []string{"*"}})
	}
	return out
}

func TestMerge_PositionalFillsUnsetInOrder(t *testing.T) {
	tests := []struct {
		name       string
		params     []ParamSpec
		positional []any
		payload    map[string]any
		want       []any
	}{
		{
			name:       "all unset",
			params:     specs("a", "b", "c"),
			positional: []any{"1", "2"},
			want:       []any{"1", "2", nil},
		},
		{
			name:       "resolved entries do not consume a slot",
			params:     specs("a", "b", "c"),
			positional: []any{"1", "2"},
			payload:    map[string]any{"a": "x"},
			want:       []any{"x", "1", "2"},
		},
		{
			name:       "gap in the middle",
			params:     specs("a", "b", "c"),
			positional: []any{"1"},
			payload:    map[string]any{"b": "y"},
			want:       []any{"1", "y", nil},
		},
		{
			name:       "fewer values than params leaves the rest unset",
			params:     specs("a", "b", "c", "d"),
			positional: []any{"1"},
			want:       []any{"1", nil, nil, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := Merge(tt.params, tt.positional, nil, tt.payload, nil, nil)
			if got := bag.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_InternalWinsOverImport(t *testing.T) {
	bag := Merge(specs("a", "b"), nil, nil,
		map[string]any{"a": "import", "b": "import"},
		map[string]any{"a": "internal"}, nil)

	got, _ := bag.Value("a")
	if got != "internal" {
		t.Errorf("a = %v, want internal", got)
	}
	got, _ = bag.Value("b")
	if got != "import" {
		t.Errorf("b = %v, want import", got)
	}
}

func TestMerge_NamedWinsOverInternal(t *testing.T) {
	bag := Merge(specs("a"), nil,
		map[string]any{"a": "named"},
		nil,
		map[string]any{"a": "internal"}, nil)

	got, _ := bag.Value("a")
	if got != "named" {
		t.Errorf("a = %v, want named", got)
	}
}

func TestMerge_ImportDeepMergeIdempotent(t *testing.T) {
	params := []ParamSpec{
		{Name: "a", Types: []string{"number"}},
		{Name: "cfg", Types: []string{"object"}},
	}
	payload := map[string]any{
		"a":   float64(1),
		"cfg": map[string]any{"x": "1", "y": map[string]any{"z": true}},
	}

	bag := NewBag(params)
	bag.applyImport(payload, "", func(string, ...any) {})
	first := bag.Args()
	bag.applyImport(payload, "", func(string, ...any) {})
	second := bag.Args()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second merge of identical payload changed the bag (-first +second):\n%s", diff)
	}
}

func TestMerge_ImportConcatenatesSequences(t *testing.T) {
	bag := NewBag(specs("items"))
	bag.applyImport(map[string]any{"items": []any{"a"}}, "", func(string, ...any) {})
	bag.applyImport(map[string]any{"items": []any{"b", "c"}}, "", func(string, ...any) {})

	got, _ := bag.Value("items")
	want := []any{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestMerge_UnknownImportKeysSkipped(t *testing.T) {
	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}

	bag := Merge(specs("a", "opts.depth"), nil, nil, map[string]any{
		"a":       "1",
		"bogus":   "2",
		"opts":    map[string]any{"depth": 3, "nested-bogus": 4},
		"unknown": map[string]any{"deep": true},
	}, nil, logf)

	if _, ok := bag.Value("bogus"); ok {
		t.Error("unknown key bogus appeared in the bag")
	}
	if _, ok := bag.Value("opts.nested-bogus"); ok {
		t.Error("unknown nested key appeared in the bag")
	}
	if got, _ := bag.Value("opts.depth"); got != 3 {
		t.Errorf("opts.depth = %v, want 3", got)
	}
	if len(logged) != 3 {
		t.Errorf("logged %d diagnostics, want 3: %v", len(logged), logged)
	}
}

func TestMerge_DottedParamsNest(t *testing.T) {
	params := []ParamSpec{
		{Name: "path", Types: []string{"string"}},
		{Name: "options.timeout", Types: []string{"number"}},
		{Name: "options.retries", Types: []string{"number"}},
	}
	bag := Merge(params, []any{"/tmp"}, map[string]any{"timeout": "30"}, nil, nil, nil)

	want := []any{"/tmp", map[string]any{"timeout": "30"}}
	if diff := cmp.Diff(want, bag.Args()); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_NamedOptionRouting(t *testing.T) {
	tests := []struct {
		name   string
		params []ParamSpec
		named  map[string]any
		check  string
		want   any
		wantOK bool
	}{
		{
			name:   "opts container wins first",
			params: specs("opts.verbose", "verbose"),
			named:  map[string]any{"verbose": true},
			check:  "opts.verbose",
			want:   true,
			wantOK: true,
		},
		{
			name:   "options container second",
			params: specs("a", "options.level"),
			named:  map[string]any{"level": "9"},
			check:  "options.level",
			want:   "9",
			wantOK: true,
		},
		{
			name:   "root key fallback",
			params: specs("a", "level"),
			named:  map[string]any{"level": "9"},
			check:  "level",
			want:   "9",
			wantOK: true,
		},
		{
			name:   "no structural match drops silently",
			params: specs("a"),
			named:  map[string]any{"level": "9"},
			check:  "level",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := Merge(tt.params, nil, tt.named, nil, nil, nil)
			got, ok := bag.Value(tt.check)
			if ok != tt.wantOK {
				t.Fatalf("Value(%q) ok = %v, want %v", tt.check, ok, tt.wantOK)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Value(%q) = %v, want %v", tt.check, got, tt.want)
			}
		})
	}
}

func TestMerge_PositionalAndImportConverge(t *testing.T) {
	params := specs("a", "b")

	fromPositional := Merge(params, []any{"2", "3"}, nil, nil, nil, nil)
	fromImport := Merge(params, nil, nil, map[string]any{"a": "2", "b": "3"}, nil, nil)

	if diff := cmp.Diff(fromPositional.Args(), fromImport.Args()); diff != "" {
		t.Errorf("positional and import bags differ (-positional +import):\n%s", diff)
	}
}

func TestMerge_DoesNotAliasPayload(t *testing.T) {
	payload := map[string]any{"cfg": map[string]any{"x": "1"}}
	bag := Merge(specs("cfg"), nil, nil, payload, nil, nil)

	payload["cfg"].(map[string]any)["x"] = "mutated"
	got, _ := bag.Value("cfg")
	if got.(map[string]any)["x"] != "1" {
		t.Error("bag aliases the caller's payload map")
	}
}

func TestMerge_PositionalSkipsContainers(t *testing.T) {
	params := specs("opts.flag", "a", "b")
	bag := Merge(params, []any{"1", "2"}, nil, nil, nil, nil)

	want := []any{map[string]any{}, "1", "2"}
	if diff := cmp.Diff(want, bag.Args()); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}
