// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nameList []string

func (n nameList) Names() []string { return n }

func newTestCompleter(t *testing.T, files ...string) (*Completer, string) {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
	}
	c := NewCompleter(nameList{"find", "finish", "help"}, nameList{"fileinfo", "strings", "find"})
	c.home = func() (string, error) { return dir, nil }
	// Relative paths are globbed against the working directory
	t.Chdir(dir)
	return c, dir
}

func TestCompleter_NamesBeforePaths(t *testing.T) {
	c, _ := newTestCompleter(t, "fixture.bin", "notes.txt")

	var got []string
	for state := 0; ; state++ {
		cand, ok := c.Complete("f", state)
		if !ok {
			break
		}
		got = append(got, cand)
	}

	assert.Equal(t, []string{"fileinfo", "find", "finish", "fixture.bin"}, got)
}

func TestCompleter_Exhausted(t *testing.T) {
	c, _ := newTestCompleter(t)

	_, ok := c.Complete("zz-nothing-here", 0)
	assert.False(t, ok)
	_, ok = c.Complete("f", -1)
	assert.False(t, ok)
}

func TestCompleter_HomeExpansion(t *testing.T) {
	c, dir := newTestCompleter(t, "sample.exe", "sample.pdf", "other.txt")

	got := c.Candidates("~/sam")
	assert.Equal(t, []string{
		filepath.Join(dir, "sample.exe"),
		filepath.Join(dir, "sample.pdf"),
	}, got)
}

func TestCompleter_WordComplete(t *testing.T) {
	c, dir := newTestCompleter(t, "sample.exe")

	tests := []struct {
		name     string
		line     string
		pos      int
		wantHead string
		wantTail string
		want     []string
	}{
		{"first word", "fi", 2, "", "", []string{"fileinfo", "find", "finish"}},
		{"after chain separator", "help;str", 8, "help;", "", []string{"strings"}},
		{"cursor mid line", "he open", 2, "", " open", []string{"help"}},
		{"path argument", "open ~/sa", 9, "open ", "", []string{filepath.Join(dir, "sample.exe")}},
		{"position past end", "hel", 10, "", "", []string{"help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, got, tail := c.WordComplete(tt.line, tt.pos)
			assert.Equal(t, tt.wantHead, head)
			assert.Equal(t, tt.wantTail, tail)
			assert.Equal(t, tt.want, got)
		})
	}
}
