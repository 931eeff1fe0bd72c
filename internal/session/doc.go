// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the artifact currently under analysis.
//
// At most one session is open per process. The shell core only reads it;
// opening and closing happen through built-in commands.
//
// # Key Types
//
//   - Manager: holder of the current session
//   - Session: one opened artifact plus an optional linked event
//   - FileObject: path, display name, size and digests of the artifact
//
// # Usage
//
//	mgr := session.NewManager()
//	if _, err := mgr.Open("/samples/invoice.pdf"); err != nil {
//	    return err
//	}
//	if mgr.IsSet() {
//	    fmt.Println(mgr.Current().File.SHA256)
//	}
package session
