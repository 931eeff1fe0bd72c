// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// completionDelimiters end the word being completed.
const completionDelimiters = " \t\n;"

// NameSource lists completable names.
type NameSource interface {
	Names() []string
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer supplies tab completions: command and module names first, then
// filesystem paths.
type Completer struct {
	sources []NameSource
	home    func() (string, error)
	glob    func(pattern string) ([]string, error)
}

// NewCompleter creates a completer over the given name sources.
func NewCompleter(sources ...NameSource) *Completer {
	return &Completer{
		sources: sources,
		home:    os.UserHomeDir,
		glob:    filepath.Glob,
	}
}

// names returns the sorted, de-duplicated names starting with prefix.
func (c *Completer) names(prefix string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, src := range c.sources {
		for _, name := range src.Names() {
			if strings.HasPrefix(name, prefix) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// paths returns filesystem matches for prefix*, with a leading ~ expanded.
func (c *Completer) paths(prefix string) []string {
	if prefix == "~" || strings.HasPrefix(prefix, "~/") {
		if home, err := c.home(); err == nil {
			prefix = home + prefix[1:]
		}
	}
	matches, err := c.glob(prefix + "*")
	if err != nil {
		return nil
	}
	return matches
}

// Complete returns the candidate at index state for text, counting names
// first and paths after them. It returns false once both are exhausted.
func (c *Completer) Complete(text string, state int) (string, bool) {
	if state < 0 {
		return "", false
	}
	names := c.names(text)
	if state < len(names) {
		return names[state], true
	}

	paths := c.paths(text)
	idx := state - len(names)
	if idx < len(paths) {
		return paths[idx], true
	}
	return "", false
}

// Candidates returns every candidate for text in Complete order.
func (c *Completer) Candidates(text string) []string {
	return append(c.names(text), c.paths(text)...)
}

// WordComplete adapts the completer to line editors that complete the word
// under the cursor. pos counts runes.
func (c *Completer) WordComplete(line string, pos int) (head string, completions []string, tail string) {
	runes := []rune(line)
	if pos > len(runes) {
		pos = len(runes)
	}
	start := pos
	for start > 0 && !strings.ContainsRune(completionDelimiters, runes[start-1]) {
		start--
	}

	word := string(runes[start:pos])
	return string(runes[:start]), c.Candidates(word), string(runes[pos:])
}
