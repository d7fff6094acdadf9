// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// InvokeError reports a failed argument conversion or an unsupported
// callable shape for one invocation.
type InvokeError struct {
	Command string
	Param   string
	Err     error
}

func (e *InvokeError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("command %q: argument %q: %v", e.Command, e.Param, e.Err)
	}
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

var (
	errType      = reflect.TypeOf((*error)(nil)).Elem()
	durationType = reflect.TypeOf(time.Duration(0))
)

// invoke converts the bag to a positional call on the underlying function.
// Unset arguments take the declared default when one exists, else the zero
// value of the parameter type.
func (c *Command) invoke(ctx context.Context, bag *Bag) (any, error) {
	args := bag.Args()
	t := c.fn.Type()

	in := make([]reflect.Value, 0, t.NumIn())
	if c.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}

	argAt := func(i int) (any, string) {
		name := fmt.Sprintf("arg%d", i)
		var src any
		if i < len(c.roots) {
			name = c.roots[i].name
		}
		if i < len(args) {
			src = args[i]
		}
		if src == nil && i < len(c.roots) && c.roots[i].hasDefault {
			src = c.roots[i].def
		}
		return src, name
	}

	pos := 0
	for len(in) < fixed {
		src, name := argAt(pos)
		v, err := convertArg(src, t.In(len(in)))
		if err != nil {
			return nil, &InvokeError{Command: c.Name, Param: name, Err: err}
		}
		in = append(in, v)
		pos++
	}
	if t.IsVariadic() {
		elem := t.In(t.NumIn() - 1).Elem()
		for pos < len(args) {
			src, name := argAt(pos)
			if src == nil {
				break
			}
			v, err := convertArg(src, elem)
			if err != nil {
				return nil, &InvokeError{Command: c.Name, Param: name, Err: err}
			}
			in = append(in, v)
			pos++
		}
	}

	outs := c.fn.Call(in)
	switch t.NumOut() {
	case 0:
		return nil, nil
	case 1:
		if t.Out(0) == errType {
			if outs[0].IsNil() {
				return nil, nil
			}
			return nil, outs[0].Interface().(error)
		}
		return outs[0].Interface(), nil
	case 2:
		if t.Out(1) != errType {
			return nil, &InvokeError{Command: c.Name, Err: fmt.Errorf("second return value must be error")}
		}
		var err error
		if !outs[1].IsNil() {
			err = outs[1].Interface().(error)
		}
		return outs[0].Interface(), err
	default:
		return nil, &InvokeError{Command: c.Name, Err: fmt.Errorf("unsupported return arity %d", t.NumOut())}
	}
}

// convertArg adapts a resolved bag value to the function's parameter type.
// Strings parse strconv-style, numbers convert across numeric kinds, and
// container values go through a JSON round-trip (covers maps into structs
// and []any into typed slices).
func convertArg(src any, t reflect.Type) (reflect.Value, error) {
	if src == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(src)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(t.Kind()) {
		return rv.Convert(t), nil
	}
	if s, ok := src.(string); ok {
		return parseString(s, t)
	}
	return jsonRoundTrip(src, t)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// parseString converts a CLI string token to the target type.
func parseString(s string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
		return v, nil

	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool value %q: %w", s, err)
		}
		v.SetBool(b)
		return v, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t == durationType {
			d, err := time.ParseDuration(s)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			v.SetInt(int64(d))
			return v, nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid int value %q: %w", s, err)
		}
		v.SetInt(i)
		return v, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid uint value %q: %w", s, err)
		}
		v.SetUint(u)
		return v, nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid float value %q: %w", s, err)
		}
		v.SetFloat(f)
		return v, nil

	case reflect.Slice:
		parts := strings.Split(s, ",")
		vals := make([]string, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				continue
			}
			vals = append(vals, part)
		}
		slice := reflect.MakeSlice(t, len(vals), len(vals))
		for i, part := range vals {
			ev, err := parseString(part, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			slice.Index(i).Set(ev)
		}
		return slice, nil

	case reflect.Ptr:
		ev, err := parseString(s, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, nil

	case reflect.Interface:
		if t.NumMethod() == 0 {
			v.Set(reflect.ValueOf(s))
			return v, nil
		}
		return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", t)

	case reflect.Map, reflect.Struct:
		return jsonRoundTrip(s, t)

	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", t)
	}
}

// jsonRoundTrip converts between JSON-shaped values and arbitrary Go types.
// A string input is treated as JSON text; anything else is re-encoded.
func jsonRoundTrip(src any, t reflect.Type) (reflect.Value, error) {
	var data []byte
	if s, ok := src.(string); ok {
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(src); err != nil {
			return reflect.Value{}, err
		}
	}
	p := reflect.New(t)
	if err := json.Unmarshal(data, p.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s: %w", src, t, err)
	}
	return p.Elem(), nil
}
