// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package output provides the output buffer shared by built-in commands and
// analysis modules.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ph0sec/viper/internal/ui/styles"
)

// =============================================================================
// ENTRY TYPES
// =============================================================================

// EntryType classifies a single output entry.
type EntryType string

const (
	TypeInfo    EntryType = "info"
	TypeItem    EntryType = "item"
	TypeWarning EntryType = "warning"
	TypeError   EntryType = "error"
	TypeSuccess EntryType = "success"
	TypeTable   EntryType = "table"

	// TypeMarkdown entries are rendered with glamour on styled sinks.
	TypeMarkdown EntryType = "markdown"
)

// Entry is one recorded piece of command output.
type Entry struct {
	Type EntryType `json:"type"`
	Data any       `json:"data"`
}

// UnmarshalJSON restores table payloads to Table so decoded entries render
// the same way as live ones.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type EntryType       `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Type = raw.Type
	if len(raw.Data) == 0 {
		e.Data = nil
		return nil
	}
	if raw.Type == TypeTable {
		var t Table
		if err := json.Unmarshal(raw.Data, &t); err != nil {
			return err
		}
		e.Data = t
		return nil
	}
	return json.Unmarshal(raw.Data, &e.Data)
}

// Table is the payload of a TypeTable entry.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Sink resolves where rendered output goes at the moment of writing.
// The shell implements it so that output follows the active redirect target.
type Sink interface {
	Writer() io.Writer
	// Styled reports whether the writer is a terminal that accepts colors.
	Styled() bool
}

// =============================================================================
// BUFFER
// =============================================================================

var (
	infoStyle    = lipgloss.NewStyle().Foreground(styles.Cyan)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	headerStyle  = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
)

// Buffer records output entries and renders each one to its sink as it is
// added. A Buffer without a sink only records.
type Buffer struct {
	sink    Sink
	entries []Entry
}

// NewBuffer creates a buffer that renders to sink.
func NewBuffer(sink Sink) *Buffer {
	return &Buffer{sink: sink}
}

// SetSink attaches the buffer to a sink.
func (b *Buffer) SetSink(sink Sink) {
	b.sink = sink
}

// Info records an informational line.
func (b *Buffer) Info(format string, args ...any) {
	b.add(TypeInfo, fmt.Sprintf(format, args...))
}

// Item records a list item.
func (b *Buffer) Item(format string, args ...any) {
	b.add(TypeItem, fmt.Sprintf(format, args...))
}

// Warning records a warning line.
func (b *Buffer) Warning(format string, args ...any) {
	b.add(TypeWarning, fmt.Sprintf(format, args...))
}

// Error records an error line.
func (b *Buffer) Error(format string, args ...any) {
	b.add(TypeError, fmt.Sprintf(format, args...))
}

// Success records a success line.
func (b *Buffer) Success(format string, args ...any) {
	b.add(TypeSuccess, fmt.Sprintf(format, args...))
}

// Table records a table.
func (b *Buffer) Table(header []string, rows [][]string) {
	b.add(TypeTable, Table{Header: header, Rows: rows})
}

// Markdown records a markdown document.
func (b *Buffer) Markdown(md string) {
	b.add(TypeMarkdown, md)
}

// Append records and renders previously captured entries.
func (b *Buffer) Append(entries ...Entry) {
	for _, e := range entries {
		b.add(e.Type, e.Data)
	}
}

// Styled reports whether the buffer renders to a terminal that accepts colors.
func (b *Buffer) Styled() bool {
	return b.sink != nil && b.sink.Styled()
}

// Entries returns a copy of the recorded entries.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of recorded entries.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Clear drops all recorded entries.
func (b *Buffer) Clear() {
	b.entries = b.entries[:0]
}

// JSON serializes the recorded entries.
func (b *Buffer) JSON() (string, error) {
	data, err := json.Marshal(b.entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}
	return string(data), nil
}

func (b *Buffer) add(t EntryType, data any) {
	entry := Entry{Type: t, Data: data}
	b.entries = append(b.entries, entry)
	if b.sink == nil {
		return
	}
	fmt.Fprintln(b.sink.Writer(), Render(entry, b.sink.Styled()))
}

// =============================================================================
// RENDERING
// =============================================================================

// Render formats a single entry for display.
func Render(e Entry, styled bool) string {
	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	switch e.Type {
	case TypeTable:
		t, ok := e.Data.(Table)
		if !ok {
			return fmt.Sprint(e.Data)
		}
		return renderTable(t, styled)
	case TypeMarkdown:
		md := fmt.Sprint(e.Data)
		if !styled {
			return strings.TrimRight(md, "\n")
		}
		return renderMarkdown(md)
	case TypeItem:
		return " - " + fmt.Sprint(e.Data)
	case TypeWarning:
		return paint(warningStyle, "[!] ") + fmt.Sprint(e.Data)
	case TypeError:
		return paint(errorStyle, "[!] "+fmt.Sprint(e.Data))
	case TypeSuccess:
		return paint(successStyle, "[+] ") + fmt.Sprint(e.Data)
	default:
		return paint(infoStyle, "[*] ") + fmt.Sprint(e.Data)
	}
}

func renderTable(t Table, styled bool) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Header...).
		Rows(t.Rows...)
	if styled {
		tbl = tbl.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	} else {
		tbl = tbl.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	return strings.TrimRight(tbl.String(), "\n")
}
