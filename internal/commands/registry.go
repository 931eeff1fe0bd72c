// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/ph0sec/viper/internal/config"
	"github.com/ph0sec/viper/internal/modules"
	"github.com/ph0sec/viper/internal/output"
	"github.com/ph0sec/viper/internal/project"
	"github.com/ph0sec/viper/internal/session"
	"github.com/ph0sec/viper/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a built-in command with its argument list.
type Handler func(ctx context.Context, c *Context, args []string) error

// Command is a built-in shell command.
type Command struct {
	// Name is the command name typed at the prompt (e.g., "open")
	Name string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "open <path>")
	Usage string

	// Category for grouping in help display
	Category string

	// Handler is the function that executes the command
	Handler Handler
}

// UsageError reports wrong arguments. The registry prints the command usage
// instead of treating it as a failure.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErr(msg string) error {
	return &UsageError{Message: msg}
}

// =============================================================================
// COMMAND CONTEXT
// =============================================================================

// Context carries the dependencies built-in handlers work with.
//
// Example usage in a command handler:
//
//	func handleInfo(ctx context.Context, c *Context, args []string) error {
//	    sess, err := c.requireSession()
//	    if err != nil {
//	        return err
//	    }
//	    c.Out.Info("%s", sess.File.Name)
//	    return nil
//	}
type Context struct {
	// Config is the loaded configuration
	Config *config.Config

	// Sessions holds the open file, if any
	Sessions *session.Manager

	// Project is the active project
	Project *project.Project

	// Store is the project repository
	Store *storage.Store

	// Modules lists the analysis modules for help output
	Modules *modules.Registry

	// Out is the command output buffer
	Out *output.Buffer

	// Logger records diagnostics outside the terminal
	Logger *zap.Logger
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds the built-in commands and the output buffer they share.
type Registry struct {
	commands map[string]*Command
	ctx      *Context
}

// NewRegistry creates an empty registry bound to c. A nil Out gets a fresh
// buffer and a nil Logger a no-op logger.
func NewRegistry(c *Context) *Registry {
	if c.Out == nil {
		c.Out = output.NewBuffer(nil)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return &Registry{commands: make(map[string]*Command), ctx: c}
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

// Get retrieves a command by name, or nil.
func (r *Registry) Get(name string) *Command {
	return r.commands[name]
}

// Lookup returns a handler for name bound to the registry context.
func (r *Registry) Lookup(name string) (func(ctx context.Context, args []string) error, bool) {
	cmd := r.commands[name]
	if cmd == nil {
		return nil, false
	}
	return func(ctx context.Context, args []string) error {
		return r.Execute(ctx, cmd, args)
	}, true
}

// Names returns the command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, name := range r.Names() {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Output returns the buffer handlers write to.
func (r *Registry) Output() *output.Buffer {
	return r.ctx.Out
}

// Execute runs cmd with args. Usage errors are printed with the command
// usage and do not count as failures.
func (r *Registry) Execute(ctx context.Context, cmd *Command, args []string) error {
	err := cmd.Handler(ctx, r.ctx, args)
	var usage *UsageError
	if errors.As(err, &usage) {
		r.ctx.Out.Warning("%s", usage.Message)
		if cmd.Usage != "" {
			r.ctx.Out.Info("usage: %s", cmd.Usage)
		}
		return nil
	}
	return err
}
