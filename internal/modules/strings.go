// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package modules

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

const defaultMinLength = 4

// Strings extracts printable ASCII runs from the open file.
type Strings struct {
	Base
	sessions  SessionSource
	minLength *int
	limit     *int
}

// NewStrings returns a factory for the strings module.
func NewStrings(sessions SessionSource) Factory {
	return func() Module {
		m := &Strings{Base: NewBase("strings"), sessions: sessions}
		m.minLength = m.Flags().IntP("min-length", "n", defaultMinLength, "minimum string length")
		m.limit = m.Flags().IntP("limit", "l", 0, "stop after this many strings (0 = no limit)")
		return m
	}
}

// Run implements Module.
func (m *Strings) Run(ctx context.Context) error {
	if ok, err := m.ParseArgs(); !ok || err != nil {
		return err
	}
	if *m.minLength < 1 {
		return fmt.Errorf("strings: minimum length must be positive, got %d", *m.minLength)
	}

	sess := m.sessions.Current()
	if sess == nil || sess.File == nil {
		m.out.Error("No open session")
		return nil
	}

	fh, err := os.Open(sess.File.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sess.File.Path, err)
	}
	defer fh.Close()

	found, err := extractStrings(ctx, fh, *m.minLength, *m.limit, func(s string) {
		m.out.Item("%s", s)
	})
	if err != nil {
		return err
	}
	m.out.Info("%d strings found", found)
	return nil
}

// extractStrings calls emit for every run of at least minLen printable ASCII
// bytes in r. A positive limit stops the scan after that many runs.
func extractStrings(ctx context.Context, r io.Reader, minLen, limit int, emit func(string)) (int, error) {
	br := bufio.NewReader(r)
	var run []byte
	found := 0

	flush := func() bool {
		if len(run) >= minLen {
			emit(string(run))
			found++
		}
		run = run[:0]
		return limit > 0 && found >= limit
	}

	for n := 0; ; n++ {
		if n%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return found, err
			}
		}
		c, err := br.ReadByte()
		if err == io.EOF {
			flush()
			return found, nil
		}
		if err != nil {
			return found, err
		}
		if (c >= 0x20 && c < 0x7f) || c == '\t' {
			run = append(run, c)
			continue
		}
		if flush() {
			return found, nil
		}
	}
}
