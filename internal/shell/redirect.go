// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// RedirectMarker separates a command line from its output file.
const RedirectMarker = ">"

// FileOpener opens a redirect target for appending.
type FileOpener func(path string) (io.WriteCloser, error)

// AppendFile is the default FileOpener.
func AppendFile(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

// Redirect holds the output target of one input line. It implements
// output.Sink, so command output follows the target while it is active.
type Redirect struct {
	terminal io.Writer
	styled   bool
	open     FileOpener
	logger   *zap.Logger

	target string
	file   io.WriteCloser
	failed bool
}

// NewRedirect creates a controller writing to terminal when no target is set.
func NewRedirect(terminal io.Writer, styled bool, open FileOpener, logger *zap.Logger) *Redirect {
	if open == nil {
		open = AppendFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redirect{terminal: terminal, styled: styled, open: open, logger: logger}
}

// Begin looks for the first RedirectMarker in line. The text after it, up to
// the next chain separator and trimmed, becomes the target; units chained
// after the target stay on the line and share it. An empty target leaves
// output on the terminal.
//
//	"find name *.pdf > out.txt; pdf id"  ->  "find name *.pdf ; pdf id", out.txt
func (r *Redirect) Begin(line string) string {
	idx := strings.Index(line, RedirectMarker)
	if idx < 0 {
		return line
	}

	rest := line[idx+len(RedirectMarker):]
	remainder := ""
	if j := strings.Index(rest, ChainSeparator); j >= 0 {
		rest, remainder = rest[:j], rest[j:]
	}

	if target := strings.TrimSpace(rest); target != "" {
		r.target = target
		fmt.Fprintf(r.terminal, "Writing output to %s\n", target)
	}
	return line[:idx] + remainder
}

// Target returns the active target, or "" for the terminal.
func (r *Redirect) Target() string {
	return r.target
}

// Writer returns where output goes right now. The target file is opened on
// first use; if it cannot be opened the error is reported once and output
// falls back to the terminal for the rest of the line.
func (r *Redirect) Writer() io.Writer {
	if r.target == "" || r.failed {
		return r.terminal
	}
	if r.file == nil {
		f, err := r.open(r.target)
		if err != nil {
			r.failed = true
			r.logger.Warn("redirect target unavailable", zap.String("target", r.target), zap.Error(err))
			fmt.Fprintf(r.terminal, "Cannot write to %s: %v\n", r.target, err)
			return r.terminal
		}
		r.file = f
	}
	return r.file
}

// Styled reports whether output may carry terminal colors.
func (r *Redirect) Styled() bool {
	return r.styled && (r.target == "" || r.failed)
}

// Reset closes any open target and returns output to the terminal.
func (r *Redirect) Reset() {
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			r.logger.Warn("failed to close redirect target", zap.String("target", r.target), zap.Error(err))
		}
	}
	r.target = ""
	r.file = nil
	r.failed = false
}
