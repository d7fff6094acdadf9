// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package docindex extracts CLI metadata from documented Go functions.
//
// Scan parses Go source files and returns one Func per exported function
// that carries a doc comment. Parameters are declared with directive lines
// inside the doc comment:
//
//	//cli:param <name> <type[|type...]>[=<default>] [description]
//
// Names may be dotted ("options.timeout") to declare fields of a nested
// option object. The default is a literal scanned with balanced brackets and
// decoded as JSON when possible, so `=5`, `="hi there"`, `=[1,2]` and
// `={"a":1}` all work.
//
// A documented function without any //cli:param directives falls back to its
// Go signature: parameter names come from the declaration and type tags are
// derived from the Go types (number, string, boolean, duration, array,
// object, or * for interface types). A leading context.Context parameter is
// never a CLI parameter.
package docindex

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// Param describes one declared CLI parameter of a documented function.
type Param struct {
	Name       string // may contain a dot to denote nesting, e.g. "options.timeout"
	Types      []string
	Default    any
	HasDefault bool
	Desc       string
}

// Func describes one exported, documented function found by Scan.
type Func struct {
	Name        string
	Params      []Param
	Description string
	File        string
	Line        int
}

const paramDirective = "//cli:param "

// Scan parses the given Go source files and returns metadata for every
// exported top-level function that carries a doc comment. Undocumented and
// unexported functions are not returned; methods are skipped.
func Scan(paths ...string) ([]Func, error) {
	fset := token.NewFileSet()
	var funcs []Func
	for _, path := range paths {
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("docindex: parse %s: %w", path, err)
		}
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv != nil || fd.Doc == nil || !fd.Name.IsExported() {
				continue
			}
			fn, err := funcFromDecl(fset, fd)
			if err != nil {
				return nil, err
			}
			funcs = append(funcs, fn)
		}
	}
	return funcs, nil
}

func funcFromDecl(fset *token.FileSet, fd *ast.FuncDecl) (Func, error) {
	pos := fset.Position(fd.Pos())
	fn := Func{Name: fd.Name.Name, File: pos.Filename, Line: pos.Line}

	var desc []string
	for _, c := range fd.Doc.List {
		text := c.Text
		if strings.HasPrefix(text, paramDirective) {
			p, err := parseParam(strings.TrimPrefix(text, paramDirective))
			if err != nil {
				return Func{}, fmt.Errorf("docindex: %s:%d: %w", pos.Filename, fset.Position(c.Pos()).Line, err)
			}
			fn.Params = append(fn.Params, p)
			continue
		}
		if strings.HasPrefix(text, "//cli:") {
			// Unknown directive; keep it out of the description.
			continue
		}
		text = strings.TrimPrefix(text, "//")
		text = strings.TrimPrefix(text, " ")
		desc = append(desc, text)
	}
	fn.Description = strings.TrimSpace(strings.Join(desc, "\n"))

	if len(fn.Params) == 0 {
		fn.Params = paramsFromSignature(fd.Type)
	}
	return fn, nil
}

// ParseParamList parses a textual parameter list such as
// "a number, b number=0 right operand" into Params. It is the fallback used
// when no source AST is available. The list is split on top-level commas;
// unbalanced brackets are an error.
func ParseParamList(text string) ([]Param, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	pieces, err := splitTop(text)
	if err != nil {
		return nil, err
	}
	params := make([]Param, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		p, err := parseParam(piece)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// parseParam parses "<name> <type[|type...]>[=<default>] [description]".
func parseParam(s string) (Param, error) {
	s = strings.TrimSpace(s)
	name, rest, _ := strings.Cut(s, " ")
	if name == "" {
		return Param{}, fmt.Errorf("cli:param: missing parameter name")
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return Param{}, fmt.Errorf("cli:param %s: missing type", name)
	}

	i := 0
	for i < len(rest) && rest[i] != ' ' && rest[i] != '=' {
		i++
	}
	p := Param{Name: name, Types: strings.Split(rest[:i], "|")}

	if i < len(rest) && rest[i] == '=' {
		lit, n, err := scanLiteral(rest[i+1:])
		if err != nil {
			return Param{}, fmt.Errorf("cli:param %s: %w", name, err)
		}
		p.Default = decodeLiteral(lit)
		p.HasDefault = true
		p.Desc = strings.TrimSpace(rest[i+1+n:])
	} else {
		p.Desc = strings.TrimSpace(rest[i:])
	}
	return p, nil
}

// scanLiteral scans one literal token from the front of s and returns the
// token and the number of bytes consumed. Quoted strings and bracketed
// containers may contain spaces; a bare token ends at the first space.
func scanLiteral(s string) (string, int, error) {
	if s == "" {
		return "", 0, fmt.Errorf("missing default value")
	}
	switch s[0] {
	case '"', '\'':
		quote := s[0]
		for i := 1; i < len(s); i++ {
			if s[i] == '\\' {
				i++
				continue
			}
			if s[i] == quote {
				return s[:i+1], i + 1, nil
			}
		}
		return "", 0, fmt.Errorf("unterminated string in default value")
	case '[', '{', '(':
		var stack []byte
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '[', '{', '(':
				stack = append(stack, s[i])
			case ']', '}', ')':
				if len(stack) == 0 || stack[len(stack)-1] != opener(s[i]) {
					return "", 0, fmt.Errorf("unbalanced brackets in default value")
				}
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return s[:i+1], i + 1, nil
				}
			case '"', '\'':
				quote := s[i]
				i++
				for i < len(s) && s[i] != quote {
					if s[i] == '\\' {
						i++
					}
					i++
				}
				if i >= len(s) {
					return "", 0, fmt.Errorf("unterminated string in default value")
				}
			}
		}
		return "", 0, fmt.Errorf("unbalanced brackets in default value")
	default:
		i := strings.IndexByte(s, ' ')
		if i < 0 {
			i = len(s)
		}
		return s[:i], i, nil
	}
}

func opener(close byte) byte {
	switch close {
	case ']':
		return '['
	case '}':
		return '{'
	case ')':
		return '('
	}
	return 0
}

// decodeLiteral decodes a default literal as JSON when possible and falls
// back to the raw string. Single-quoted strings are normalized first.
func decodeLiteral(lit string) any {
	if len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'' {
		return lit[1 : len(lit)-1]
	}
	var v any
	if err := json.Unmarshal([]byte(lit), &v); err == nil {
		return v
	}
	return lit
}

// splitTop splits s on top-level commas, respecting quotes and bracket
// nesting. Unbalanced brackets are an error.
func splitTop(s string) ([]string, error) {
	var pieces []string
	var stack []byte
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{', '(':
			stack = append(stack, s[i])
		case ']', '}', ')':
			if len(stack) == 0 || stack[len(stack)-1] != opener(s[i]) {
				return nil, fmt.Errorf("docindex: unbalanced brackets in parameter list")
			}
			stack = stack[:len(stack)-1]
		case '"', '\'':
			quote := s[i]
			i++
			for i < len(s) && s[i] != quote {
				if s[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(s) {
				return nil, fmt.Errorf("docindex: unterminated string in parameter list")
			}
		case ',':
			if len(stack) == 0 {
				pieces = append(pieces, s[start:i])
				start = i + 1
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("docindex: unbalanced brackets in parameter list")
	}
	pieces = append(pieces, s[start:])
	return pieces, nil
}

// paramsFromSignature derives Params from a Go function signature when the
// doc comment declares none. A leading context.Context is skipped.
func paramsFromSignature(ft *ast.FuncType) []Param {
	if ft.Params == nil {
		return nil
	}
	fields := ft.Params.List
	if len(fields) > 0 && isContextContext(fields[0].Type) {
		fields = fields[1:]
	}
	var params []Param
	argIndex := 0
	for _, field := range fields {
		tag := typeTag(field.Type)
		if len(field.Names) == 0 {
			params = append(params, Param{Name: fmt.Sprintf("arg%d", argIndex), Types: []string{tag}})
			argIndex++
			continue
		}
		for _, name := range field.Names {
			params = append(params, Param{Name: name.Name, Types: []string{tag}})
			argIndex++
		}
	}
	return params
}

func isContextContext(expr ast.Expr) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Context" {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == "context"
}

func typeTag(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		switch t.Name {
		case "string":
			return "string"
		case "bool":
			return "boolean"
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
			"float32", "float64", "byte", "rune":
			return "number"
		case "any":
			return "*"
		default:
			return "object"
		}
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok && ident.Name == "time" && t.Sel.Name == "Duration" {
			return "duration"
		}
		return "object"
	case *ast.ArrayType:
		return "array"
	case *ast.Ellipsis:
		return "array"
	case *ast.MapType, *ast.StructType:
		return "object"
	case *ast.StarExpr:
		return typeTag(t.X)
	case *ast.InterfaceType:
		return "*"
	default:
		return "object"
	}
}
