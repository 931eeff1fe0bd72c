// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Default(t *testing.T) {
	base := t.TempDir()
	p, err := Open(base, "")
	require.NoError(t, err)
	assert.Equal(t, base, p.Path)
	assert.Equal(t, DefaultLabel, p.Label())
	assert.Equal(t, filepath.Join(base, "history"), p.File("history"))
}

func TestOpen_Named(t *testing.T) {
	base := t.TempDir()
	p, err := Open(base, "apt28")
	require.NoError(t, err)
	assert.Equal(t, "apt28", p.Label())

	info, err := os.Stat(filepath.Join(base, "projects", "apt28"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	names, err := List(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"apt28"}, names)
}

func TestOpen_InvalidName(t *testing.T) {
	for _, name := range []string{"..", "a/b", `a\b`, "."} {
		_, err := Open(t.TempDir(), name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestList_NoProjects(t *testing.T) {
	names, err := List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBinaryPath(t *testing.T) {
	p := &Project{Path: "/srv/viper"}
	sha := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	assert.Equal(t,
		filepath.Join("/srv/viper", "binaries", "2", "c", "f", "2", sha),
		p.BinaryPath(sha))
}
