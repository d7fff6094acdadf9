// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import "strings"

// Bag is the per-invocation resolved parameter state. Every declared
// top-level parameter name exists in the bag from construction; entries stay
// in an explicit unset state until a source contributes a value. Unset
// entries translate to "no argument" at invocation time.
type Bag struct {
	order []*slot
	index map[string]*slot
}

type slot struct {
	name     string
	set      bool
	value    any
	children *Bag // non-nil for nested option objects declared by dotted names
}

// NewBag builds a bag with one unset entry per declared parameter. Dotted
// names create nested structure; specs sharing a root share one entry.
func NewBag(params []ParamSpec) *Bag {
	b := emptyBag()
	for _, p := range params {
		b.declare(p.Name)
	}
	return b
}

func emptyBag() *Bag {
	return &Bag{index: make(map[string]*slot)}
}

func (b *Bag) declare(name string) {
	root, rest, nested := strings.Cut(name, ".")
	s, ok := b.index[root]
	if !ok {
		s = &slot{name: root}
		b.index[root] = s
		b.order = append(b.order, s)
	}
	if nested {
		if s.children == nil {
			s.children = emptyBag()
		}
		s.children.declare(rest)
	}
}

// Merge resolves one invocation's argument state from up to four sources in
// strict precedence order: import payload, then internal args, then
// positional arguments, then named options. It is pure: a fresh bag is built
// on every call and container values are deep-copied on insert. logf
// receives diagnostics for skipped import keys; nil disables them.
func Merge(params []ParamSpec, positional []any, named map[string]any, payload map[string]any, internal map[string]any, logf func(string, ...any)) *Bag {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	b := NewBag(params)
	b.applyImport(payload, "", logf)
	b.applyInternal(internal)
	b.applyPositional(positional)
	b.applyNamed(named)
	return b
}

// applyImport deep-merges an import payload into the bag. Keys that do not
// match a declared parameter are skipped with a diagnostic; the declared
// shape is never widened by import data.
func (b *Bag) applyImport(payload map[string]any, prefix string, logf func(string, ...any)) {
	for _, key := range sortedKeys(payload) {
		v := payload[key]
		s, ok := b.index[key]
		if !ok {
			logf("funcli: import key %q does not match a declared parameter, skipping", prefix+key)
			continue
		}
		if s.children != nil && !s.set {
			if vm, ok := v.(map[string]any); ok {
				s.children.applyImport(vm, prefix+key+".", logf)
				continue
			}
			// Container target, non-container source: source overwrites.
			s.value = copyValue(v)
			s.set = true
			continue
		}
		if s.set {
			s.value = deepMerge(s.value, v)
		} else {
			s.value = copyValue(v)
			s.set = true
		}
	}
}

// deepMerge merges src into dst and returns the result. Two sequences
// concatenate, two mappings merge recursively, anything else means src
// overwrites dst. Inputs are never aliased by the result.
func deepMerge(dst, src any) any {
	switch d := dst.(type) {
	case []any:
		if s, ok := src.([]any); ok {
			out := make([]any, 0, len(d)+len(s))
			for _, v := range d {
				out = append(out, copyValue(v))
			}
			for _, v := range s {
				out = append(out, copyValue(v))
			}
			return out
		}
	case map[string]any:
		if s, ok := src.(map[string]any); ok {
			out := make(map[string]any, len(d))
			for k, v := range d {
				out[k] = copyValue(v)
			}
			for k, v := range s {
				if cur, ok := out[k]; ok {
					out[k] = deepMerge(cur, v)
				} else {
					out[k] = copyValue(v)
				}
			}
			return out
		}
	}
	return copyValue(src)
}

// applyInternal overwrites root-level entries with caller-injected values.
// Internal args never populate nested parameters directly and always win
// over import values.
func (b *Bag) applyInternal(internal map[string]any) {
	for _, key := range sortedKeys(internal) {
		s, ok := b.index[key]
		if !ok {
			continue
		}
		s.value = copyValue(internal[key])
		s.set = true
	}
}

// applyPositional fills still-unset entries left to right in declaration
// order. Resolved entries and nested containers do not consume a slot.
func (b *Bag) applyPositional(values []any) {
	i := 0
	for _, s := range b.order {
		if i >= len(values) {
			return
		}
		if s.set || s.children != nil {
			continue
		}
		s.value = copyValue(values[i])
		s.set = true
		i++
	}
}

// applyNamed routes each named option to the nested container literally
// named "opts", then "options", then a root-level entry matching the option
// name exactly. First structural match wins; no match drops the option
// silently. Named options overwrite even internal-set values.
func (b *Bag) applyNamed(named map[string]any) {
	for _, key := range sortedKeys(named) {
		v := named[key]
		if b.setOption("opts", key, v) {
			continue
		}
		if b.setOption("options", key, v) {
			continue
		}
		if s, ok := b.index[key]; ok {
			s.value = copyValue(v)
			s.set = true
		}
	}
}

func (b *Bag) setOption(container, key string, v any) bool {
	s, ok := b.index[container]
	if !ok || s.children == nil || s.set {
		return false
	}
	cs, ok := s.children.index[key]
	if !ok {
		cs = &slot{name: key}
		s.children.index[key] = cs
		s.children.order = append(s.children.order, cs)
	}
	cs.value = copyValue(v)
	cs.set = true
	return true
}

// Args returns the bag's values in declared parameter order, suitable for a
// positional call. Nested containers collapse to a map of their resolved
// descendants; unset entries yield nil.
func (b *Bag) Args() []any {
	out := make([]any, 0, len(b.order))
	for _, s := range b.order {
		out = append(out, s.resolved())
	}
	return out
}

func (s *slot) resolved() any {
	if s.set {
		return s.value
	}
	if s.children != nil {
		return s.children.collapse()
	}
	return nil
}

func (b *Bag) collapse() map[string]any {
	m := make(map[string]any, len(b.order))
	for _, s := range b.order {
		if s.set {
			m[s.name] = s.value
		} else if s.children != nil {
			m[s.name] = s.children.collapse()
		}
	}
	return m
}

// Value looks up a possibly dotted name and reports whether it is resolved.
// A nested container reports its collapsed map and is considered resolved.
func (b *Bag) Value(name string) (any, bool) {
	root, rest, nested := strings.Cut(name, ".")
	s, ok := b.index[root]
	if !ok {
		return nil, false
	}
	if nested {
		if s.children == nil {
			return nil, false
		}
		return s.children.Value(rest)
	}
	if s.set {
		return s.value, true
	}
	if s.children != nil {
		return s.children.collapse(), true
	}
	return nil, false
}

// copyValue deep-copies JSON-shaped container values so the bag never
// aliases caller data.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
