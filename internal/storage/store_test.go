// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ph0sec/viper/internal/output"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "viper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var sampleFile = File{
	Name:   "sample.bin",
	Size:   5,
	MD5:    "5d41402abc4b2a76b9719d911017c592",
	SHA1:   "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
	SHA256: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
}

func TestStore_AddFileAndFind(t *testing.T) {
	s := openTestStore(t)

	found, err := s.Find("sha256", sampleFile.SHA256)
	require.NoError(t, err)
	assert.False(t, found)

	added, err := s.AddFile(sampleFile)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddFile(sampleFile)
	require.NoError(t, err)
	assert.False(t, added, "second insert of the same sha256 is a no-op")

	tests := []struct {
		key, value string
		want       bool
	}{
		{"sha256", sampleFile.SHA256, true},
		{"sha1", sampleFile.SHA1, true},
		{"md5", sampleFile.MD5, true},
		{"name", "sample.bin", true},
		{"name", "other.bin", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			found, err := s.Find(tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, found)
		})
	}

	n, err := s.FileCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_FindInvalidKey(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Find("size; DROP TABLE files", "1")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestStore_AddAnalysis(t *testing.T) {
	s := openTestStore(t)

	entries := []output.Entry{
		{Type: output.TypeInfo, Data: "first"},
		{Type: output.TypeItem, Data: "second"},
	}

	err := s.AddAnalysis(sampleFile.SHA256, "strings -n 4", entries)
	require.ErrorIs(t, err, ErrFileNotStored)

	_, err = s.AddFile(sampleFile)
	require.NoError(t, err)
	require.NoError(t, s.AddAnalysis(sampleFile.SHA256, "strings -n 4", entries))
	require.NoError(t, s.AddAnalysis(sampleFile.SHA256, "fileinfo", nil))

	got, err := s.Analyses(sampleFile.SHA256)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "strings -n 4", got[0].CmdLine)
	assert.NotEmpty(t, got[0].ID)
	require.Len(t, got[0].Results, 2)
	assert.Equal(t, output.TypeInfo, got[0].Results[0].Type)
	assert.Equal(t, "first", got[0].Results[0].Data)
	assert.Equal(t, "fileinfo", got[1].CmdLine)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viper.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.AddFile(sampleFile)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	f, err := s.GetFile(sampleFile.SHA256)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleFile, *f, cmpopts.IgnoreFields(File{}, "ID", "CreatedAt")); diff != "" {
		t.Errorf("stored file mismatch (-want +got):\n%s", diff)
	}
	assert.NotZero(t, f.ID)
	assert.Equal(t, path, s.Path())
}

func TestStore_Search(t *testing.T) {
	s := openTestStore(t)

	pdf := File{Name: "report.pdf", Size: 10, MD5: "m1", SHA1: "s1", SHA256: "h1"}
	exe := File{Name: "dropper.exe", Size: 20, MD5: "m2", SHA1: "s2", SHA256: "h2"}
	for _, f := range []File{pdf, exe} {
		_, err := s.AddFile(f)
		require.NoError(t, err)
	}

	tests := []struct {
		key, pattern string
		want         []string
	}{
		{"all", "", []string{"dropper.exe", "report.pdf"}},
		{"name", "*.pdf", []string{"report.pdf"}},
		{"name", "*.doc", nil},
		{"md5", "m2", []string{"dropper.exe"}},
	}
	for _, tt := range tests {
		t.Run(tt.key+" "+tt.pattern, func(t *testing.T) {
			files, err := s.Search(tt.key, tt.pattern)
			require.NoError(t, err)
			var names []string
			for _, f := range files {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := s.Search("size", "10")
	require.ErrorIs(t, err, ErrInvalidKey)
}
