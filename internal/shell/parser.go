// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import "strings"

// Parse splits one command into its root name and arguments on whitespace.
// No quoting or escaping is applied. The caller skips empty input.
func Parse(line string) (root string, args []string) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return "", nil
	}
	return words[0], words[1:]
}

// ChainSeparator splits one input line into independently dispatched units.
const ChainSeparator = ";"

// SplitChain splits line on ";" into trimmed units, skipping empty ones.
// A literal ";" inside an argument cannot be expressed.
func SplitChain(line string) []string {
	parts := strings.Split(line, ChainSeparator)
	units := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			units = append(units, p)
		}
	}
	return units
}
