// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ph0sec/viper/internal/modules"
	"github.com/ph0sec/viper/internal/output"
	"github.com/ph0sec/viper/internal/session"
	"github.com/ph0sec/viper/internal/ui/styles"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// CommandTable resolves built-in commands.
type CommandTable interface {
	// Lookup returns the handler registered under name.
	Lookup(name string) (func(ctx context.Context, args []string) error, bool)
	// Output is the buffer handlers write to; it is cleared after each call.
	Output() *output.Buffer
	Names() []string
}

// ModuleRegistry resolves analysis modules.
type ModuleRegistry interface {
	Get(name string) (modules.Factory, bool)
	Names() []string
}

// SessionProvider exposes the open session.
type SessionProvider interface {
	IsSet() bool
	Current() *session.Session
}

// Store records module output for stored files.
type Store interface {
	Find(key, value string) (bool, error)
	AddAnalysis(sha256, cmdLine string, results []output.Entry) error
}

// exitKeywords stop the main loop.
var exitKeywords = map[string]bool{"exit": true, "quit": true}

// =============================================================================
// RESULTS
// =============================================================================

// ResultKind classifies the outcome of one chain unit.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultExit
	ResultNotFound
	ResultError
	ResultInterrupted
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultExit:
		return "exit"
	case ResultNotFound:
		return "not found"
	case ResultError:
		return "error"
	case ResultInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of dispatching one chain unit.
type Result struct {
	Kind ResultKind
	Root string
	Err  error
}

// PanicError wraps a panic raised inside a command or module.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// =============================================================================
// DISPATCHER
// =============================================================================

var (
	reportErrorStyle = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	reportRootStyle  = lipgloss.NewStyle().Bold(true)
	reportHintStyle  = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// Dispatcher resolves a chain unit against the built-ins, then the modules,
// runs it and isolates its failures.
type Dispatcher struct {
	commands    CommandTable
	modules     ModuleRegistry
	sessions    SessionProvider
	store       Store
	storeOutput bool
	sink        output.Sink
	terminal    io.Writer
	styled      bool
	logger      *zap.Logger
}

// Dispatch runs one chain unit and reports its outcome to the terminal.
func (d *Dispatcher) Dispatch(ctx context.Context, unit string) Result {
	root, args := Parse(unit)
	res := Result{Kind: ResultOK, Root: root}

	switch {
	case root == "":
		return res
	case exitKeywords[root]:
		res.Kind = ResultExit
		return res
	}

	if handler, ok := d.commands.Lookup(root); ok {
		out := d.commands.Output()
		out.SetSink(d.sink)
		err := invoke(func() error { return handler(ctx, args) })
		out.Clear()
		res = d.classify(ctx, res, err)
	} else if factory, ok := d.modules.Get(root); ok {
		res = d.runModule(ctx, res, factory, unit, args)
	} else {
		res.Kind = ResultNotFound
	}

	d.report(res)
	return res
}

func (d *Dispatcher) runModule(ctx context.Context, res Result, factory modules.Factory, unit string, args []string) Result {
	var mod modules.Module
	err := invoke(func() error {
		mod = factory()
		mod.Output().SetSink(d.sink)
		mod.SetCommandline(args)
		return mod.Run(ctx)
	})
	res = d.classify(ctx, res, err)

	if mod == nil {
		return res
	}
	if res.Kind == ResultOK && d.storeOutput && d.sessions.IsSet() {
		d.persist(unit, mod.Output().Entries())
	}
	mod.Output().Clear()
	return res
}

// persist records module output against the open file. Failures are logged
// and never reach the operator.
func (d *Dispatcher) persist(unit string, entries []output.Entry) {
	if d.store == nil {
		return
	}
	sess := d.sessions.Current()
	if sess == nil || sess.File == nil {
		return
	}
	if err := d.store.AddAnalysis(sess.File.SHA256, unit, entries); err != nil {
		d.logger.Debug("module output not stored",
			zap.String("command", unit),
			zap.String("sha256", sess.File.SHA256),
			zap.Error(err))
	}
}

func (d *Dispatcher) classify(ctx context.Context, res Result, err error) Result {
	switch {
	case err == nil:
		res.Kind = ResultOK
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		res.Kind = ResultInterrupted
	default:
		res.Kind = ResultError
		res.Err = err
	}
	return res
}

// invoke calls fn, converting a panic into a *PanicError.
func invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func (d *Dispatcher) paint(s lipgloss.Style, text string) string {
	if !d.styled {
		return text
	}
	return s.Render(text)
}

func (d *Dispatcher) report(res Result) {
	switch res.Kind {
	case ResultNotFound:
		fmt.Fprintln(d.terminal, "Command not recognized.")
		if hint := d.suggest(res.Root); hint != "" {
			fmt.Fprintln(d.terminal, d.paint(reportHintStyle, fmt.Sprintf("Did you mean %q?", hint)))
		}
	case ResultError:
		d.logger.Warn("command failed", zap.String("command", res.Root), zap.Error(res.Err))
		fmt.Fprintf(d.terminal, "%s %s %s\n",
			d.paint(reportErrorStyle, "[!] The command"),
			d.paint(reportRootStyle, res.Root),
			d.paint(reportErrorStyle, "raised an error:"))
		fmt.Fprintln(d.terminal, res.Err.Error())

		var perr *PanicError
		if errors.As(res.Err, &perr) {
			d.terminal.Write(perr.Stack)
		}
	case ResultInterrupted:
		d.logger.Debug("command interrupted", zap.String("command", res.Root))
	}
}

// suggest returns the closest known name within two edits of root. Roots
// shorter than the distance get no suggestion.
func (d *Dispatcher) suggest(root string) string {
	best, bestDist := "", 3
	names := append(d.commands.Names(), d.modules.Names()...)
	for _, name := range names {
		dist := levenshtein.ComputeDistance(root, name)
		if dist < bestDist && dist < len(root) {
			best, bestDist = name, dist
		}
	}
	return best
}
