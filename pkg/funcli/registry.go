// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/funcli/funcli/pkg/docindex"
)

// maxDescription is the display length command descriptions are truncated to.
const maxDescription = 120

// ParamSpec describes one declared parameter of a command. A dotted name
// ("options.timeout") declares a field of a nested option object. Immutable
// once the registry is built.
type ParamSpec struct {
	Name       string
	Types      []string
	Default    any
	HasDefault bool
}

// rootParam is a top-level argument position: either a plain parameter or a
// nested option container collecting all dotted specs under one root name.
type rootParam struct {
	name       string
	def        any
	hasDefault bool
	container  bool
}

// Command is a documented, exported callable exposed on the CLI.
type Command struct {
	Name        string
	Group       string
	Params      []ParamSpec
	Description string

	fn       reflect.Value
	takesCtx bool
	roots    []rootParam
}

// Source pairs the files to scan for documentation with the callables the
// caller actually exports. A scanned function with no matching callable is
// silently dropped, as is a callable with no documentation.
type Source struct {
	Paths []string
	Funcs map[string]any
}

// Registry maps group name to command name to command. Built once, read-only
// thereafter.
type Registry struct {
	groups  map[string]map[string]*Command
	grouped bool
}

// Build constructs a registry from a single source set. All commands live
// under an implicit group and dispatch takes no group token.
func Build(src Source) (*Registry, error) {
	cmds, err := buildGroup("", src)
	if err != nil {
		return nil, err
	}
	return &Registry{groups: map[string]map[string]*Command{"": cmds}}, nil
}

// BuildGroups constructs a registry with one sub-map per named group.
// Dispatch then requires a leading group token before the command token.
func BuildGroups(groups map[string]Source) (*Registry, error) {
	r := &Registry{groups: make(map[string]map[string]*Command, len(groups)), grouped: true}
	for name, src := range groups {
		cmds, err := buildGroup(name, src)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		r.groups[name] = cmds
	}
	return r, nil
}

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()

func buildGroup(group string, src Source) (map[string]*Command, error) {
	funcs, err := docindex.Scan(src.Paths...)
	if err != nil {
		return nil, err
	}
	cmds := make(map[string]*Command)
	for _, fn := range funcs {
		callable, ok := lookupFunc(src.Funcs, fn.Name)
		if !ok {
			// Documented but not exported to us; deliberately not a command.
			continue
		}
		v := reflect.ValueOf(callable)
		if v.Kind() != reflect.Func {
			return nil, fmt.Errorf("funcli: callable %q is not a function", fn.Name)
		}
		params := make([]ParamSpec, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, ParamSpec{
				Name:       p.Name,
				Types:      slices.Clone(p.Types),
				Default:    p.Default,
				HasDefault: p.HasDefault,
			})
		}
		cmd := &Command{
			Name:        kebabCase(fn.Name),
			Group:       group,
			Params:      params,
			Description: flattenDescription(fn.Description),
			fn:          v,
			takesCtx:    v.Type().NumIn() > 0 && v.Type().In(0) == ctxType,
			roots:       rootParams(params),
		}
		cmds[cmd.Name] = cmd
	}
	return cmds, nil
}

// lookupFunc matches a documented function name against the caller-supplied
// callables, exact first, then case-insensitively.
func lookupFunc(funcs map[string]any, name string) (any, bool) {
	if fn, ok := funcs[name]; ok {
		return fn, true
	}
	for k, fn := range funcs {
		if strings.EqualFold(k, name) {
			return fn, true
		}
	}
	return nil, false
}

// rootParams collapses the declared specs to their top-level argument
// positions, preserving declaration order. Dotted specs sharing a root fold
// into one container position.
func rootParams(params []ParamSpec) []rootParam {
	var roots []rootParam
	index := make(map[string]int)
	for _, p := range params {
		root, _, nested := strings.Cut(p.Name, ".")
		if i, ok := index[root]; ok {
			if nested {
				roots[i].container = true
			}
			continue
		}
		index[root] = len(roots)
		rp := rootParam{name: root, container: nested}
		if !nested {
			rp.def = p.Default
			rp.hasDefault = p.HasDefault
		}
		roots = append(roots, rp)
	}
	return roots
}

// Grouped reports whether dispatch requires a leading group token.
func (r *Registry) Grouped() bool { return r.grouped }

// Groups returns the group names in alphabetical order.
func (r *Registry) Groups() []string {
	return sortedKeys(r.groups)
}

// Commands returns the commands of a group in alphabetical order by name.
func (r *Registry) Commands(group string) []*Command {
	cmds := r.groups[group]
	out := make([]*Command, 0, len(cmds))
	for _, name := range sortedKeys(cmds) {
		out = append(out, cmds[name])
	}
	return out
}

// flattenDescription collapses newlines and runs of whitespace to single
// spaces and truncates the result to maxDescription characters with an
// ellipsis marker.
func flattenDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxDescription {
		s = strings.TrimRight(s[:maxDescription], " ") + "..."
	}
	return s
}

// kebabCase converts an exported Go name to its CLI command name:
// "AddMul" becomes "add-mul", "JSONDump" becomes "json-dump".
func kebabCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
