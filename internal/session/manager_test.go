// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// MANAGER TESTS
// =============================================================================

func TestNewManager(t *testing.T) {
	m := NewManager()
	assert.False(t, m.IsSet())
	assert.Nil(t, m.Current())
}

func TestManager_Open(t *testing.T) {
	path := writeSample(t, "sample.bin", "hello")
	m := NewManager()

	sess, err := m.Open(path)
	require.NoError(t, err)
	require.True(t, m.IsSet())
	assert.Same(t, sess, m.Current())
	assert.True(t, strings.HasPrefix(sess.ID, "sess_"), "unexpected id %q", sess.ID)

	f := sess.File
	assert.Equal(t, "sample.bin", f.Name)
	assert.Equal(t, int64(5), f.Size)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", f.MD5)
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", f.SHA1)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", f.SHA256)
	assert.True(t, filepath.IsAbs(f.Path))
}

func TestManager_OpenErrors(t *testing.T) {
	m := NewManager()

	_, err := m.Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = m.Open(t.TempDir())
	require.ErrorIs(t, err, ErrNotRegular)

	assert.False(t, m.IsSet(), "failed opens must not change the session")
}

func TestManager_Close(t *testing.T) {
	m := NewManager()
	m.Close() // no-op with nothing open

	_, err := m.Open(writeSample(t, "a", "a"))
	require.NoError(t, err)
	m.Close()
	assert.False(t, m.IsSet())
	assert.Len(t, m.History(), 1)
}

func TestManager_LinkEvent(t *testing.T) {
	m := NewManager()
	require.ErrorIs(t, m.LinkEvent("42", false), ErrNoSession)

	_, err := m.Open(writeSample(t, "a", "a"))
	require.NoError(t, err)

	require.NoError(t, m.LinkEvent("", true))
	ev := m.Current().LinkedEvent
	require.NotNil(t, ev)
	assert.Empty(t, ev.ID)
	assert.True(t, ev.Offline)

	require.NoError(t, m.UnlinkEvent())
	assert.Nil(t, m.Current().LinkedEvent)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager()
	path := writeSample(t, "a", "abc")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Open(path)
		}()
		go func() {
			defer wg.Done()
			_ = m.IsSet()
			_ = m.Current()
		}()
	}
	wg.Wait()
	assert.True(t, m.IsSet())
}
