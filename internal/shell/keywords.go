// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"io"
	"strings"
)

// SelfKeyword is replaced with the path of the open file.
const SelfKeyword = "$self"

// KeywordResolver rewrites session-relative placeholders in raw input.
type KeywordResolver struct {
	sessions SessionProvider
	out      io.Writer
}

// NewKeywordResolver creates a resolver that reports to out.
func NewKeywordResolver(sessions SessionProvider, out io.Writer) *KeywordResolver {
	return &KeywordResolver{sessions: sessions, out: out}
}

// Resolve replaces every SelfKeyword with the open file path. It returns
// false when the line uses the keyword without an open session; the whole
// line must then be discarded.
func (k *KeywordResolver) Resolve(line string) (string, bool) {
	if !strings.Contains(line, SelfKeyword) {
		return line, true
	}

	if !k.sessions.IsSet() {
		fmt.Fprintln(k.out, "No open session")
		return "", false
	}
	sess := k.sessions.Current()
	if sess == nil || sess.File == nil {
		fmt.Fprintln(k.out, "No open session")
		return "", false
	}
	return strings.ReplaceAll(line, SelfKeyword, sess.File.Path), true
}
