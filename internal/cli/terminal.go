// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and color control for the viper shell.
//
// Color handling:
// - ui.color = "never" or NO_COLOR disables colors
// - ui.color = "always" or FORCE_COLOR enables them
// - otherwise colors follow stdout TTY detection

package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for layout
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the current terminal width.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// ColorsEnabled decides whether output may carry ANSI colors. mode is the
// ui.color setting. See https://no-color.org/ for NO_COLOR.
func ColorsEnabled(mode string, getenv func(string) string, isTTY bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTTY
}

// ColorProfile returns the termenv profile for the decision made by
// ColorsEnabled.
func ColorProfile(enabled bool) termenv.Profile {
	if !enabled {
		return termenv.Ascii
	}
	profile := termenv.ColorProfile()
	if profile == termenv.Ascii {
		// Forced colors on a non-terminal still get basic ANSI
		return termenv.ANSI
	}
	return profile
}

// ConfigureColors applies the color decision process-wide and returns it.
func ConfigureColors(mode string) bool {
	enabled := ColorsEnabled(mode, os.Getenv, IsStdoutTTY())
	lipgloss.SetColorProfile(ColorProfile(enabled))
	return enabled
}
