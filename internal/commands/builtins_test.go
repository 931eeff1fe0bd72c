// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ph0sec/viper/internal/config"
	"github.com/ph0sec/viper/internal/modules"
	"github.com/ph0sec/viper/internal/output"
	"github.com/ph0sec/viper/internal/project"
	"github.com/ph0sec/viper/internal/session"
	"github.com/ph0sec/viper/internal/storage"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

type testEnv struct {
	reg    *Registry
	ctx    *Context
	sample string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Paths.Storage = base

	proj, err := project.Open(base, "")
	require.NoError(t, err)

	store, err := storage.Open(proj.File("viper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sessions := session.NewManager()
	mods := modules.NewRegistry()
	require.NoError(t, modules.RegisterDefaults(mods, sessions))

	c := &Context{
		Config:   cfg,
		Sessions: sessions,
		Project:  proj,
		Store:    store,
		Modules:  mods,
	}
	reg := NewRegistry(c)
	RegisterBuiltins(reg)

	sample := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, os.WriteFile(sample, []byte("hello"), 0644))

	return &testEnv{reg: reg, ctx: c, sample: sample}
}

// run executes a built-in and returns the recorded entries, clearing the buffer.
func (e *testEnv) run(t *testing.T, name string, args ...string) []output.Entry {
	t.Helper()
	cmd := e.reg.Get(name)
	require.NotNil(t, cmd, "command %s not registered", name)
	require.NoError(t, e.reg.Execute(context.Background(), cmd, args))
	entries := e.reg.Output().Entries()
	e.reg.Output().Clear()
	return entries
}

func texts(entries []output.Entry) []string {
	var out []string
	for _, e := range entries {
		if s, ok := e.Data.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func tableRows(t *testing.T, entries []output.Entry) map[string]string {
	t.Helper()
	for _, e := range entries {
		if tbl, ok := e.Data.(output.Table); ok {
			rows := map[string]string{}
			for _, r := range tbl.Rows {
				rows[r[0]] = r[len(r)-1]
			}
			return rows
		}
	}
	t.Fatal("no table in output")
	return nil
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_Builtins(t *testing.T) {
	env := newTestEnv(t)

	names := env.reg.Names()
	for _, want := range []string{"help", "open", "close", "info", "store", "find", "analysis", "link", "sessions", "projects"} {
		assert.Contains(t, names, want)
	}
	assert.Nil(t, env.reg.Get("nope"))

	cats := env.reg.ByCategory()
	assert.Len(t, cats["Session"], 5)
	assert.Len(t, cats["Repository"], 4)
}

func TestRegistry_UsageErrorIsNotFailure(t *testing.T) {
	env := newTestEnv(t)

	entries := env.run(t, "open")
	got := texts(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "open expects exactly one path", got[0])
	assert.Equal(t, "usage: open <path|sha256>", got[1])
}

func TestRegistry_HandlerError(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("boom")
	env.reg.Register(&Command{
		Name:    "fail",
		Handler: func(ctx context.Context, c *Context, args []string) error { return boom },
	})

	err := env.reg.Execute(context.Background(), env.reg.Get("fail"), nil)
	require.ErrorIs(t, err, boom)
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestHelp(t *testing.T) {
	env := newTestEnv(t)

	entries := env.run(t, "help")
	got := texts(entries)
	assert.Contains(t, got, "Commands:")
	assert.Contains(t, got, "Modules:")

	last := entries[len(entries)-1]
	require.Equal(t, output.TypeMarkdown, last.Type)
	assert.Contains(t, last.Data, "system shell")

	env.ctx.Config.Shell.EscapeEnabled = false
	entries = env.run(t, "help")
	assert.Contains(t, entries[len(entries)-1].Data, "disabled")
}

func TestOpenInfoClose(t *testing.T) {
	env := newTestEnv(t)

	got := texts(env.run(t, "info"))
	assert.Equal(t, []string{"No open session"}, got)

	got = texts(env.run(t, "open", env.sample))
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "Session opened on "))
	assert.True(t, env.ctx.Sessions.IsSet())

	rows := tableRows(t, env.run(t, "info"))
	assert.Equal(t, "sample.bin", rows["Name"])
	assert.Equal(t, helloSHA256, rows["SHA256"])
	assert.Equal(t, "no", rows["Stored"])

	got = texts(env.run(t, "close"))
	assert.Equal(t, []string{"Session closed"}, got)
	assert.False(t, env.ctx.Sessions.IsSet())
}

func TestOpen_Missing(t *testing.T) {
	env := newTestEnv(t)

	entries := env.run(t, "open", filepath.Join(t.TempDir(), "missing.bin"))
	require.Len(t, entries, 1)
	assert.Equal(t, output.TypeError, entries[0].Type)
	assert.False(t, env.ctx.Sessions.IsSet())
}

func TestStoreFindAndReopen(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "open", env.sample)

	entries := env.run(t, "store")
	require.Len(t, entries, 1)
	assert.Equal(t, output.TypeSuccess, entries[0].Type)

	entries = env.run(t, "store")
	assert.Equal(t, output.TypeWarning, entries[0].Type)

	_, err := os.Stat(env.ctx.Project.BinaryPath(helloSHA256))
	require.NoError(t, err, "sample copied into the repository")

	rows := tableRows(t, env.run(t, "info"))
	assert.Equal(t, "yes", rows["Stored"])

	got := texts(env.run(t, "find", "name", "*.bin"))
	assert.Contains(t, got, "1 files found")

	got = texts(env.run(t, "find", "name", "*.pdf"))
	assert.Equal(t, []string{"No matching files"}, got)

	got = texts(env.run(t, "find", "size", "5"))
	assert.Contains(t, got, `unknown search key "size"`)

	// Stored samples can be reopened by hash
	env.run(t, "close")
	env.run(t, "open", helloSHA256)
	require.True(t, env.ctx.Sessions.IsSet())
	assert.Equal(t, env.ctx.Project.BinaryPath(helloSHA256), env.ctx.Sessions.Current().File.Path)
}

func TestLink(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "open", env.sample)

	env.run(t, "link", "new", "--offline")
	ev := env.ctx.Sessions.Current().LinkedEvent
	require.NotNil(t, ev)
	assert.Empty(t, ev.ID)
	assert.True(t, ev.Offline)

	env.run(t, "link", "1234")
	ev = env.ctx.Sessions.Current().LinkedEvent
	assert.Equal(t, "1234", ev.ID)
	assert.False(t, ev.Offline)

	rows := tableRows(t, env.run(t, "info"))
	assert.Equal(t, "1234", rows["Event"])

	env.run(t, "link", "--remove")
	assert.Nil(t, env.ctx.Sessions.Current().LinkedEvent)

	got := texts(env.run(t, "link", "--bogus"))
	assert.Contains(t, got, "usage: link <event-id|new> [--offline] | link --remove")
}

func TestAnalysis(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "open", env.sample)
	env.run(t, "store")

	got := texts(env.run(t, "analysis"))
	assert.Equal(t, []string{"No analysis stored for this file"}, got)

	results := []output.Entry{{Type: output.TypeItem, Data: "hello"}}
	require.NoError(t, env.ctx.Store.AddAnalysis(helloSHA256, "strings -n 4", results))

	runs, err := env.ctx.Store.Analyses(helloSHA256)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	rows := tableRows(t, env.run(t, "analysis"))
	assert.Contains(t, rows, runs[0].ID)

	entries := env.run(t, "analysis", runs[0].ID)
	got = texts(entries)
	assert.Equal(t, "Command: strings -n 4", got[0])
	assert.Equal(t, "hello", got[len(got)-1])

	path := filepath.Join(t.TempDir(), "runs.yaml")
	env.run(t, "analysis", "--export", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var exported []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "strings -n 4", exported[0]["command"])
}

func TestSessionsAndProjects(t *testing.T) {
	env := newTestEnv(t)

	got := texts(env.run(t, "sessions"))
	assert.Equal(t, []string{"No sessions opened yet"}, got)

	env.run(t, "open", env.sample)
	rows := tableRows(t, env.run(t, "sessions"))
	assert.Len(t, rows, 1)

	got = texts(env.run(t, "projects"))
	assert.Equal(t, []string{"No projects, only the default repository"}, got)

	_, err := project.Open(env.ctx.Config.Paths.Storage, "apt28")
	require.NoError(t, err)
	rows = tableRows(t, env.run(t, "projects"))
	assert.Contains(t, rows, "apt28")
}
