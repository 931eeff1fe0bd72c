// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell implements the interactive read-parse-dispatch loop.
//
// Each input line goes through these steps:
//
//  1. A line starting with "!" runs verbatim in the system shell. Nothing
//     else below applies to it.
//  2. "$self" is replaced with the open file path. Without a session the
//     whole line is dropped.
//  3. The first ">" splits off a redirect target. Output of the line is
//     appended to that file.
//  4. The rest is split on ";" and every unit is dispatched in order:
//     exit/quit, then built-in commands, then analysis modules.
//  5. The redirect is reset.
//
// A failing unit is reported and the chain carries on. An interrupt (Ctrl-C)
// abandons only the running unit.
//
// # Key Types
//
//   - Shell: The main loop, wired through Config
//   - Dispatcher: Resolves and runs one chain unit, returns a Result
//   - Redirect: Per-line output target, implements output.Sink
//   - Completer: Names, then filesystem paths
//   - HistoryStore: Project-scoped history file
//   - LineReader: Blocking read returning line, EOF or interrupted
package shell
