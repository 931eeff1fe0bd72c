// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package project resolves the directory that holds per-project shell state
// (history, analysis database, log file).
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLabel is shown in place of a name for the default project.
const DefaultLabel = "default"

// ErrInvalidName is returned for project names that would escape the base directory.
var ErrInvalidName = errors.New("invalid project name")

// Project is the grouping context for stored artifacts and shell state.
type Project struct {
	// Name is empty for the default project.
	Name string
	// Path is the project directory.
	Path string
}

// Open returns the project called name under base, creating its directory.
// An empty name selects the default project rooted at base itself.
func Open(base, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := base
	if name != "" {
		path = filepath.Join(base, "projects", name)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	return &Project{Name: name, Path: path}, nil
}

// Label returns the project name, or DefaultLabel for the default project.
func (p *Project) Label() string {
	if p.Name == "" {
		return DefaultLabel
	}
	return p.Name
}

// File returns the path of a file inside the project directory.
func (p *Project) File(name string) string {
	return filepath.Join(p.Path, name)
}

// BinaryPath returns where a stored file with the given sha256 lives inside
// the project: binaries/<h0>/<h1>/<h2>/<h3>/<sha256>.
func (p *Project) BinaryPath(sha256 string) string {
	parts := []string{p.Path, "binaries"}
	if len(sha256) >= 4 {
		for _, c := range sha256[:4] {
			parts = append(parts, string(c))
		}
	}
	return filepath.Join(append(parts, sha256)...)
}

// List returns the names of the named projects under base.
func List(base string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(base, "projects"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
