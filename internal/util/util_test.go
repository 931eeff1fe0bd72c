// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("hello"), 0644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0644))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("old content that is longer"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("new"), 0644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAtomicWriteFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")

	err := AtomicWriteFrom(path, 0600, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "open /tmp/sample")
		return err
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "open /tmp/sample\n", string(got))

	boom := errors.New("boom")
	err = AtomicWriteFrom(filepath.Join(dir, "other"), 0600, func(w io.Writer) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, statErr := os.Stat(filepath.Join(dir, "other"))
	assert.True(t, os.IsNotExist(statErr))
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "sample.exe", 20, "sample.exe"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii cut", "very_long_filename.bin", 10, "very_lo..."},
		{"tiny width", "abcdef", 2, "ab"},
		{"zero", "abc", 0, ""},
		{"cjk cut", "日本語ファイル", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, StringWidth(got), tt.width)
		})
	}
}
