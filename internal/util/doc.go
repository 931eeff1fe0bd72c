// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across viper.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - AtomicWriteFrom: Atomic write of whatever a writer callback produces
//
// String Utilities:
//   - TruncateWidth: Display-width aware truncation with ellipsis
//   - StringWidth: Display width of a string
//
// # Usage
//
//	// Persist line history without leaving a half-written file behind
//	err := util.AtomicWriteFrom(path, 0600, line.WriteHistory)
package util
