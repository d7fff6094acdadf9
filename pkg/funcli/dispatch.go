// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Config carries the dispatcher's explicit configuration. Name, Description
// and Version feed the help banner and --version (typically from
// pkgmeta.Read). Internal maps parameter names to caller-injected values that
// are hidden from the CLI surface.
type Config struct {
	Name        string
	Description string
	Version     string

	Internal map[string]any

	// Parallel runs batch invocations concurrently instead of sequentially.
	Parallel bool

	// Stdout receives help, version and JSON output. Defaults to os.Stdout.
	Stdout io.Writer

	// Logf receives diagnostics (skipped import keys). Defaults to log.Printf.
	Logf func(format string, args ...any)
}

func (cfg Config) cliName() string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return "cli"
}

func (cfg Config) stdout() io.Writer {
	if cfg.Stdout != nil {
		return cfg.Stdout
	}
	return os.Stdout
}

func (cfg Config) logf() func(string, ...any) {
	if cfg.Logf != nil {
		return cfg.Logf
	}
	return log.Printf
}

// PayloadError reports a malformed or unreadable import payload. It is fatal
// for the invocation; no partial recovery is attempted.
type PayloadError struct {
	Source string
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid import payload %q: %v", e.Source, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// parsedArgv is the classified form of raw CLI tokens.
type parsedArgv struct {
	help       bool
	version    bool
	jsonOut    bool
	payload    string
	hasPayload bool
	named      map[string]any
	words      []string
}

// scanArgv classifies raw tokens into global flags, named option candidates
// and bare words (command path plus positionals). Named options take a value
// from "=value" or from the following token when it does not look like a
// flag; a bare "--flag" becomes boolean true.
func scanArgv(argv []string) parsedArgv {
	p := parsedArgv{named: make(map[string]any)}
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "-h", "--help":
			p.help = true
			continue
		case "-v", "--version":
			p.version = true
			continue
		case "-j", "--json":
			p.jsonOut = true
			if i+1 < len(argv) && !strings.HasPrefix(argv[i+1], "-") {
				p.payload = argv[i+1]
				p.hasPayload = true
				i++
			}
			continue
		case "-d", "--data":
			if i+1 < len(argv) {
				p.payload = argv[i+1]
				p.hasPayload = true
				i++
			}
			continue
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			name := strings.TrimLeft(arg, "-")
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				value := name[eq+1:]
				name = name[:eq]
				switch name {
				case "json", "j":
					p.jsonOut = true
					p.payload = value
					p.hasPayload = true
				case "data", "d":
					p.payload = value
					p.hasPayload = true
				default:
					p.named[name] = value
				}
				continue
			}
			if i+1 < len(argv) && (!strings.HasPrefix(argv[i+1], "-") || isNumeric(argv[i+1])) {
				p.named[name] = argv[i+1]
				i++
			} else {
				p.named[name] = true
			}
			continue
		}
		p.words = append(p.words, arg)
	}
	return p
}

// isNumeric reports whether s looks like a (possibly signed) number, so that
// "--offset -5" consumes the -5 as a value rather than a flag.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		start = 1
	}
	hasDigit := false
	hasDot := false
	for i := start; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			hasDigit = true
		case s[i] == '.' && !hasDot:
			hasDot = true
		default:
			return false
		}
	}
	return hasDigit
}

// decodePayload decodes an import payload from a literal JSON string or from
// a file path ending .json/.yaml/.yml. The decoded value must be an object
// (single invocation) or an array of objects (batch).
func decodePayload(src string) (single map[string]any, batch []map[string]any, err error) {
	data := []byte(src)
	yamlIn := false
	switch strings.ToLower(filepath.Ext(src)) {
	case ".json":
		if data, err = os.ReadFile(src); err != nil {
			return nil, nil, &PayloadError{Source: src, Err: err}
		}
	case ".yaml", ".yml":
		if data, err = os.ReadFile(src); err != nil {
			return nil, nil, &PayloadError{Source: src, Err: err}
		}
		yamlIn = true
	}

	var v any
	if yamlIn {
		err = yaml.Unmarshal(data, &v)
	} else {
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, nil, &PayloadError{Source: src, Err: err}
	}

	switch t := v.(type) {
	case map[string]any:
		return t, nil, nil
	case []any:
		items := make([]map[string]any, 0, len(t))
		for i, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, nil, &PayloadError{Source: src, Err: fmt.Errorf("array element %d is not an object", i)}
			}
			items = append(items, m)
		}
		return nil, items, nil
	default:
		return nil, nil, &PayloadError{Source: src, Err: fmt.Errorf("payload must be an object or an array of objects")}
	}
}

// Run parses raw CLI tokens, decides between the version, help and execute
// paths, and returns the ordered per-invocation results. A JSON-array import
// payload expands into a batch: one invocation per element, run sequentially
// (first failure aborts the rest) or, with cfg.Parallel, concurrently
// (a failure does not cancel started siblings; results stay in input order).
// With -j/--json the results are additionally serialized as one JSON string
// to cfg.Stdout. A command miss is not an error: the listing plus a fuzzy
// suggestion is printed and nil results are returned.
func (r *Registry) Run(ctx context.Context, cfg Config, argv []string) ([]any, error) {
	out := cfg.stdout()
	pa := scanArgv(argv)

	if pa.version {
		fmt.Fprintln(out, cfg.Version)
		return nil, nil
	}

	var group, command string
	var positional []string
	if r.grouped {
		switch {
		case len(pa.words) >= 2:
			group, command, positional = pa.words[0], pa.words[1], pa.words[2:]
		case len(pa.words) == 1:
			group = pa.words[0]
		}
	} else if len(pa.words) >= 1 {
		command, positional = pa.words[0], pa.words[1:]
	}

	cmd, found := r.Resolve(group, command)
	if pa.help || !found {
		if found {
			fmt.Fprint(out, r.Detail(cfg, cmd))
			return nil, nil
		}
		fmt.Fprint(out, r.Listing(cfg))
		token := command
		if token == "" {
			token = group
		}
		if token != "" {
			if s, ok := r.Suggest(token); ok {
				fmt.Fprintf(out, "\nUnknown command %q. Did you mean '%s'?\n", token, s.Path())
			}
		}
		return nil, nil
	}

	var items []map[string]any
	batch := false
	if pa.hasPayload {
		single, many, err := decodePayload(pa.payload)
		if err != nil {
			return nil, err
		}
		if many != nil {
			items = many
			batch = true
		} else {
			items = []map[string]any{single}
		}
	} else {
		items = []map[string]any{nil}
	}

	posArgs := make([]any, len(positional))
	for i, s := range positional {
		posArgs[i] = s
	}

	logf := cfg.logf()
	results := make([]any, len(items))
	if batch && cfg.Parallel {
		var g errgroup.Group
		for i, item := range items {
			i, item := i, item
			g.Go(func() error {
				bag := Merge(cmd.Params, posArgs, pa.named, item, cfg.Internal, logf)
				v, err := cmd.invoke(ctx, bag)
				if err != nil {
					return fmt.Errorf("invocation %d: %w", i, err)
				}
				results[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, item := range items {
			bag := Merge(cmd.Params, posArgs, pa.named, item, cfg.Internal, logf)
			v, err := cmd.invoke(ctx, bag)
			if err != nil {
				if batch {
					return nil, fmt.Errorf("invocation %d: %w", i, err)
				}
				return nil, err
			}
			results[i] = v
		}
	}

	if pa.jsonOut {
		var payload any = results
		if !batch {
			payload = results[0]
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("funcli: encoding results: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}
	return results, nil
}
