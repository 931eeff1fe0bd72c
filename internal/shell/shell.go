// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// LINE READER
// =============================================================================

// ReadStatus is the outcome of one blocking read.
type ReadStatus int

const (
	// ReadLine means a line was read.
	ReadLine ReadStatus = iota
	// ReadEOF means the input is exhausted.
	ReadEOF
	// ReadInterrupted means the operator cancelled the read.
	ReadInterrupted
)

// LineReader reads one line of input, showing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, ReadStatus, error)
}

// InterruptFunc derives the context one chain unit runs under. The context
// is cancelled when the operator interrupts that unit.
type InterruptFunc func(parent context.Context) (context.Context, context.CancelFunc)

// OnInterrupt cancels on SIGINT.
func OnInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// =============================================================================
// SHELL
// =============================================================================

// Config wires a Shell to its collaborators.
type Config struct {
	Reader   LineReader
	Out      io.Writer
	Styled   bool
	Commands CommandTable
	Modules  ModuleRegistry
	Sessions SessionProvider
	// Store may be nil; the prompt then shows no stored marker.
	Store Store

	ProjectName   string
	StoreOutput   bool
	EscapeEnabled bool

	// Escape runs "!" lines. Defaults to SystemShell on the process stdio.
	Escape EscapeRunner
	// Interrupts defaults to OnInterrupt.
	Interrupts InterruptFunc
	// Open opens redirect targets. Defaults to AppendFile.
	Open   FileOpener
	Logger *zap.Logger
}

// Shell is the interactive read-parse-dispatch loop.
type Shell struct {
	cfg        Config
	out        io.Writer
	logger     *zap.Logger
	keywords   *KeywordResolver
	redirect   *Redirect
	dispatcher *Dispatcher
	escape     EscapeRunner
	interrupts InterruptFunc

	active bool
}

// New creates a shell. Reader, Out, Commands, Modules and Sessions are required.
func New(cfg Config) *Shell {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	escape := cfg.Escape
	if escape == nil {
		escape = SystemShell(os.Stdin, os.Stdout, os.Stderr)
	}
	interrupts := cfg.Interrupts
	if interrupts == nil {
		interrupts = OnInterrupt
	}

	redirect := NewRedirect(cfg.Out, cfg.Styled, cfg.Open, logger)
	return &Shell{
		cfg:      cfg,
		out:      cfg.Out,
		logger:   logger,
		keywords: NewKeywordResolver(cfg.Sessions, cfg.Out),
		redirect: redirect,
		dispatcher: &Dispatcher{
			commands:    cfg.Commands,
			modules:     cfg.Modules,
			sessions:    cfg.Sessions,
			store:       cfg.Store,
			storeOutput: cfg.StoreOutput,
			sink:        redirect,
			terminal:    cfg.Out,
			styled:      cfg.Styled,
			logger:      logger,
		},
		escape:     escape,
		interrupts: interrupts,
		active:     true,
	}
}

// Active reports whether the loop keeps reading input.
func (s *Shell) Active() bool {
	return s.active
}

// Stop ends the loop after the current line.
func (s *Shell) Stop() {
	s.active = false
}

// Redirect exposes the redirect controller.
func (s *Shell) Redirect() *Redirect {
	return s.redirect
}

// Run reads and processes lines until exit, quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	for s.active {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, status, err := s.cfg.Reader.ReadLine(BuildPrompt(s.promptState(), s.cfg.Styled))
		if err != nil {
			s.logger.Error("failed to read input", zap.Error(err))
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch status {
		case ReadInterrupted:
			fmt.Fprintln(s.out)
			continue
		case ReadEOF:
			fmt.Fprintln(s.out)
			s.Stop()
			continue
		}

		s.ProcessLine(ctx, line)
	}
	return nil
}

// ProcessLine handles one raw input line: shell escape, keyword substitution,
// redirect, chain splitting and dispatch of every unit.
func (s *Shell) ProcessLine(ctx context.Context, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	if strings.HasPrefix(line, EscapeMarker) {
		s.runEscape(ctx, line[len(EscapeMarker):])
		return
	}

	line, ok := s.keywords.Resolve(line)
	if !ok {
		return
	}

	commandPart := s.redirect.Begin(line)
	defer s.redirect.Reset()

	for _, unit := range SplitChain(commandPart) {
		unitCtx, stop := s.interrupts(ctx)
		res := s.dispatcher.Dispatch(unitCtx, unit)
		stop()

		if res.Kind == ResultExit {
			s.Stop()
		}
	}
}

func (s *Shell) runEscape(ctx context.Context, command string) {
	if !s.cfg.EscapeEnabled {
		fmt.Fprintln(s.out, "Shell escape is disabled")
		return
	}

	s.logger.Info("shell escape", zap.String("command", command))
	escCtx, stop := s.interrupts(ctx)
	defer stop()

	err := s.escape(escCtx, command)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		s.logger.Debug("shell escape exited", zap.Int("code", exitErr.ExitCode()))
	default:
		fmt.Fprintf(s.out, "Shell escape failed: %v\n", err)
	}
}

// promptState collects the prompt inputs from the session and store.
func (s *Shell) promptState() PromptState {
	st := PromptState{ProjectName: s.cfg.ProjectName, Stored: true}
	if !s.cfg.Sessions.IsSet() {
		return st
	}
	sess := s.cfg.Sessions.Current()
	if sess == nil {
		return st
	}

	st.SessionOpen = true
	if sess.File != nil {
		st.FileName = sess.File.Name
		if s.cfg.Store != nil {
			found, err := s.cfg.Store.Find("sha256", sess.File.SHA256)
			if err != nil {
				s.logger.Debug("repository lookup failed", zap.Error(err))
			} else {
				st.Stored = found
			}
		}
	}
	if ev := sess.LinkedEvent; ev != nil {
		st.Event = &EventState{ID: ev.ID, Offline: ev.Offline}
	}
	return st
}
