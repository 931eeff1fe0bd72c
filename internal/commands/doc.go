// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the built-in commands of the viper shell.
//
// Built-ins are resolved before analysis modules. Each handler receives the
// argument list and a Context carrying the session manager, project, store
// and output buffer.
//
// # Key Types
//
//   - Registry: Built-in command table with a shared output buffer
//   - Command: Name, usage and handler of one built-in
//   - Context: Dependencies handed to every handler
//   - UsageError: Wrong arguments, reported with the command usage
//
// # Built-in Commands
//
//   - help: Show commands, modules and shell syntax
//   - open / close: Manage the session
//   - info: Show the open file
//   - store: Add the open file to the repository
//   - find: Search the repository
//   - analysis: List or show recorded module runs
//   - link: Associate the session with an external event
//   - sessions / projects: List sessions and projects
//
// # Usage
//
//	reg := commands.NewRegistry(&commands.Context{Sessions: sessions, Store: store})
//	commands.RegisterBuiltins(reg)
//	if cmd := reg.Get("open"); cmd != nil {
//	    err := reg.Execute(ctx, cmd, []string{"/tmp/sample.exe"})
//	}
package commands
