// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/peterh/liner"

	"github.com/ph0sec/viper/internal/shell"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineEditor is the part of liner.State the terminal uses.
type lineEditor interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
	SetWordCompleter(f liner.WordCompleter)
	Close() error
}

// Terminal reads shell input with line editing, history navigation and tab
// completion. It implements shell.LineReader and shell.HistoryEditor.
type Terminal struct {
	editor lineEditor
}

// NewTerminal puts the terminal under liner control. Ctrl-C aborts the
// current prompt instead of killing the process.
func NewTerminal() *Terminal {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetTabCompletionStyle(liner.TabPrints)
	return &Terminal{editor: st}
}

// SetCompleter installs the tab completion callback.
func (t *Terminal) SetCompleter(fn liner.WordCompleter) {
	t.editor.SetWordCompleter(fn)
}

// ReadLine shows prompt and reads one line. liner cannot measure escape
// sequences, so the prompt is shown without colors.
func (t *Terminal) ReadLine(prompt string) (string, shell.ReadStatus, error) {
	line, err := t.editor.Prompt(ansi.Strip(prompt))
	switch {
	case err == nil:
	case errors.Is(err, liner.ErrPromptAborted):
		return "", shell.ReadInterrupted, nil
	case errors.Is(err, io.EOF):
		return "", shell.ReadEOF, nil
	default:
		return "", shell.ReadLine, err
	}

	if strings.TrimSpace(line) != "" {
		t.editor.AppendHistory(line)
	}
	return line, shell.ReadLine, nil
}

// ReadHistory loads history entries from r.
func (t *Terminal) ReadHistory(r io.Reader) (int, error) {
	return t.editor.ReadHistory(r)
}

// WriteHistory writes history entries to w.
func (t *Terminal) WriteHistory(w io.Writer) (int, error) {
	return t.editor.WriteHistory(w)
}

// Close restores the terminal mode.
func (t *Terminal) Close() error {
	return t.editor.Close()
}
