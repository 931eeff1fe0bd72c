// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modules provides the analysis module registry and the stock modules.
package modules

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ph0sec/viper/internal/output"
)

// =============================================================================
// MODULE DEFINITION
// =============================================================================

// Module is one analysis run. A fresh instance is created for every
// invocation, so instances never share state.
type Module interface {
	// SetCommandline receives the raw argument list.
	SetCommandline(args []string)

	// Run executes the module. Errors are reported by the caller.
	Run(ctx context.Context) error

	// Output is the buffer the module appends to.
	Output() *output.Buffer
}

// Factory creates a fresh module instance.
type Factory func() Module

// Info describes a registered module.
type Info struct {
	Name        string
	Description string
	Factory     Factory
}

// ErrDuplicate is returned when a module name is registered twice.
var ErrDuplicate = errors.New("module already registered")

// =============================================================================
// MODULE REGISTRY
// =============================================================================

// Registry maps module names to factories.
type Registry struct {
	modules map[string]Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Info)}
}

// Register adds a module.
func (r *Registry) Register(name, description string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("invalid module registration %q", name)
	}
	if _, ok := r.modules[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.modules[name] = Info{Name: name, Description: description, Factory: factory}
	return nil
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, bool) {
	info, ok := r.modules[name]
	if !ok {
		return nil, false
	}
	return info.Factory, true
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered module sorted by name.
func (r *Registry) All() []Info {
	all := make([]Info, 0, len(r.modules))
	for _, name := range r.Names() {
		all = append(all, r.modules[name])
	}
	return all
}
