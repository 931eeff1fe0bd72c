// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineHistory keeps one entry per line, like a readline history.
type lineHistory struct {
	entries []string
}

func (h *lineHistory) ReadHistory(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		h.entries = append(h.entries, sc.Text())
		n++
	}
	return n, sc.Err()
}

func (h *lineHistory) WriteHistory(w io.Writer) (int, error) {
	for i, e := range h.entries {
		if _, err := fmt.Fprintln(w, e); err != nil {
			return i, err
		}
	}
	return len(h.entries), nil
}

func TestHistoryStore_MissingFile(t *testing.T) {
	h := NewHistoryStore(filepath.Join(t.TempDir(), "history"), &lineHistory{})
	n, err := h.Load()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project", "history")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	src := &lineHistory{entries: []string{"open /tmp/a.exe", "strings -n 8", "find all > out.txt"}}
	require.NoError(t, NewHistoryStore(path, src).Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	dst := &lineHistory{}
	h := NewHistoryStore(path, dst)
	assert.Equal(t, path, h.Path())
	n, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, src.entries, dst.entries)
}

func TestHistoryStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	hist := &lineHistory{entries: []string{"help"}}
	h := NewHistoryStore(path, hist)

	require.NoError(t, h.Save())
	hist.entries = append(hist.entries, "info")
	require.NoError(t, h.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "help\ninfo\n", string(data))
}

// =============================================================================
// SHELL ESCAPE
// =============================================================================

func TestSystemShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	var stdout, stderr strings.Builder
	run := SystemShell(strings.NewReader(""), &stdout, &stderr)

	require.NoError(t, run(context.Background(), "echo one; echo two >&2"))
	assert.Equal(t, "one\n", stdout.String())
	assert.Equal(t, "two\n", stderr.String())

	err := run(context.Background(), "exit 3")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestProcessLine_EscapeFailures(t *testing.T) {
	ts := newTestShell(t, func(c *Config) {
		c.Escape = func(ctx context.Context, command string) error {
			if command == "missing" {
				return exec.ErrNotFound
			}
			return exec.Command("/bin/sh", "-c", "exit 1").Run()
		}
	})
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	ts.ProcessLine(context.Background(), "!false")
	assert.Empty(t, ts.out.String(), "non-zero exit is not reported")

	ts.ProcessLine(context.Background(), "!missing")
	assert.Equal(t, "Shell escape failed: executable file not found in $PATH\n", ts.out.String())
}
