// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package modules

// RegisterDefaults registers the stock modules.
func RegisterDefaults(r *Registry, sessions SessionSource) error {
	stock := []struct {
		name, description string
		factory           Factory
	}{
		{"fileinfo", "Show size, type and hashes of the open file", NewFileInfo(sessions)},
		{"strings", "Extract printable strings from the open file", NewStrings(sessions)},
	}
	for _, m := range stock {
		if err := r.Register(m.name, m.description, m.factory); err != nil {
			return err
		}
	}
	return nil
}
