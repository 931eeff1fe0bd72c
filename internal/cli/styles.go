// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ph0sec/viper/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES FOR THE CLI
// =============================================================================

var (
	// LogoStyle renders the startup logo
	LogoStyle = lipgloss.NewStyle().Foreground(styles.Cyan)

	// BannerStyle is used for the repository summary line
	BannerStyle = lipgloss.NewStyle().Foreground(styles.Magenta)

	// BannerBoldStyle highlights values inside the banner
	BannerBoldStyle = BannerStyle.Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// render applies style only when colors are enabled.
func render(enabled bool, style lipgloss.Style, text string) string {
	if !enabled {
		return text
	}
	return style.Render(text)
}
