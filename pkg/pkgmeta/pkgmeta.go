// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pkgmeta reads the optional funcli.toml project manifest used for
// the default CLI banner (name, description, version).
package pkgmeta

import (
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// ManifestName is the file Read looks for in the given directory.
const ManifestName = "funcli.toml"

// Meta holds project metadata for the CLI banner. All fields may be empty.
type Meta struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Version     string `toml:"version"`
}

// Read loads the manifest from dir, best-effort: a missing file yields a
// zero Meta, and a malformed file or version string is logged and otherwise
// ignored. Read never returns an error.
func Read(dir string) Meta {
	var m Meta
	path := filepath.Join(dir, ManifestName)
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("pkgmeta: failed to read %s: %v", path, err)
		}
		return Meta{}
	}
	if m.Version != "" {
		if v, err := semver.NewVersion(m.Version); err != nil {
			log.Printf("pkgmeta: %s: invalid version %q: %v", path, m.Version, err)
		} else {
			m.Version = v.String()
		}
	}
	return m
}
