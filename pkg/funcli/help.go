// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package funcli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// nameColumn is the fixed width reserved for command names in the listing.
const nameColumn = 18

// Listing renders the full command listing: banner, usage, global options,
// then every group (alphabetical) with every command (alphabetical) as a
// one-line summary. The implicit group of an ungrouped registry gets no
// group header.
func (r *Registry) Listing(cfg Config) string {
	var b strings.Builder

	b.WriteString(cfg.cliName())
	if cfg.Description != "" {
		b.WriteString(" - ")
		b.WriteString(cfg.Description)
	}
	b.WriteString("\n\n")

	b.WriteString("USAGE:\n")
	if r.grouped {
		fmt.Fprintf(&b, "    %s GROUP COMMAND [ARGS...] [OPTIONS]\n\n", cfg.cliName())
	} else {
		fmt.Fprintf(&b, "    %s COMMAND [ARGS...] [OPTIONS]\n\n", cfg.cliName())
	}

	b.WriteString("GLOBAL OPTIONS:\n")
	fmt.Fprintf(&b, "    %-24s %s\n", "-h, --help", "Show help")
	fmt.Fprintf(&b, "    %-24s %s\n", "-j, --json [PAYLOAD]", "Output JSON; optionally import a payload")
	fmt.Fprintf(&b, "    %-24s %s\n", "-d, --data PAYLOAD", "Import payload (JSON string or file path)")
	fmt.Fprintf(&b, "    %-24s %s\n\n", "-v, --version", "Show version")

	b.WriteString("COMMANDS:\n")
	for _, group := range r.Groups() {
		if r.grouped {
			fmt.Fprintf(&b, "  %s:\n", group)
		}
		for _, cmd := range r.Commands(group) {
			fmt.Fprintf(&b, "    %s %s\n", padName(cmd.Name), cmd.Description)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Run '%s COMMAND --help' for more information on a command.\n", cfg.cliName())

	return b.String()
}

// padName fits a command name into the fixed listing column, truncating very
// long names and padding the rest.
func padName(name string) string {
	if len(name) > nameColumn {
		return name[:nameColumn-3] + "..."
	}
	return name + strings.Repeat(" ", nameColumn-len(name))
}

// Detail renders single-command help: the command's usage tokens followed by
// its full description. Parameters named in the ignore set (internal args
// plus the literal container names "opts"/"options") are omitted.
func (r *Registry) Detail(cfg Config, c *Command) string {
	ignore := map[string]bool{"opts": true, "options": true}
	for name := range cfg.Internal {
		ignore[name] = true
	}

	parts := []string{cfg.cliName()}
	if c.Group != "" {
		parts = append(parts, c.Group)
	}
	parts = append(parts, c.Name)
	for _, p := range c.Params {
		if ignore[p.Name] {
			continue
		}
		parts = append(parts, paramToken(p))
	}

	var b strings.Builder
	b.WriteString("USAGE:\n")
	b.WriteString("    " + strings.Join(parts, " ") + "\n")
	if c.Description != "" {
		b.WriteString("\n" + c.Description + "\n")
	}
	return b.String()
}

// paramToken renders one parameter as a CLI usage token. A parameter carrying
// an opts./options. prefix is an optional named flag; anything else is a
// required positional placeholder. The suffix shows the default value when
// one exists, else the type tags joined by "|", and is suppressed entirely
// for plain string or wildcard parameters.
func paramToken(p ParamSpec) string {
	stripped := strings.TrimPrefix(strings.TrimPrefix(p.Name, "opts."), "options.")

	suffix := ""
	switch {
	case p.HasDefault:
		suffix = "=" + formatValue(p.Default)
	case len(p.Types) == 1 && (p.Types[0] == "string" || p.Types[0] == "*"):
		// Suppressed.
	case len(p.Types) > 0:
		suffix = "=" + strings.Join(p.Types, "|")
	}

	if stripped != p.Name {
		return "--" + stripped + suffix
	}
	return "<" + stripped + suffix + ">"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
