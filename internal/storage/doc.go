// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is the per-project repository of stored files and the
// module output recorded against them.
//
// # Key Types
//
//   - Store: SQLite-backed repository (one database per project)
//   - File: a stored sample and its hashes
//   - Analysis: one recorded module run
//
// # Usage
//
// Open a repository and record a sample:
//
//	store, err := storage.Open(proj.File("viper.db"))
//	added, err := store.AddFile(storage.File{Name: "a.exe", SHA256: sum})
//
// Query it:
//
//	stored, err := store.Find("sha256", sum)
//	files, err := store.Search("name", "*.pdf")
//	runs, err := store.Analyses(sum)
package storage
