// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ph0sec/viper/internal/ui/styles"
	"github.com/ph0sec/viper/internal/util"
)

// maxPromptFileWidth bounds the file name shown in the prompt.
const maxPromptFileWidth = 40

var (
	promptProjectStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	promptLabelStyle   = lipgloss.NewStyle().Foreground(styles.Cyan)
	promptFileStyle    = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	promptEventStyle   = lipgloss.NewStyle().Foreground(styles.Blue)
	promptStoredStyle  = lipgloss.NewStyle().Foreground(styles.Magenta)
)

// EventState is the linked external event shown in the prompt.
type EventState struct {
	// ID is empty while the event is pending creation.
	ID      string
	Offline bool
}

// PromptState is everything the prompt depends on.
type PromptState struct {
	// ProjectName is empty for the default project.
	ProjectName string
	SessionOpen bool
	FileName    string
	// Stored is false when the open file is not in the repository.
	Stored bool
	Event  *EventState
}

// BuildPrompt renders the prompt. It has no side effects.
//
//	viper >                              no session
//	apt28 viper sample.exe [not stored] > named project, unstored file
//	viper sample.exe[MISP 42 (Offline)] > linked event
func BuildPrompt(s PromptState, styled bool) string {
	paint := func(st lipgloss.Style, text string) string {
		if !styled || text == "" {
			return text
		}
		return st.Render(text)
	}

	prefix := ""
	if s.ProjectName != "" {
		prefix = paint(promptProjectStyle, s.ProjectName) + " "
	}
	if !s.SessionOpen {
		return prefix + paint(promptLabelStyle, "viper > ")
	}

	stored := ""
	if !s.Stored {
		stored = paint(promptStoredStyle, " [not stored]")
	}

	return prefix +
		paint(promptLabelStyle, "viper ") +
		paint(promptFileStyle, util.TruncateWidth(s.FileName, maxPromptFileWidth)) +
		paint(promptEventStyle, eventLabel(s.Event)) +
		stored +
		paint(promptLabelStyle, " > ")
}

func eventLabel(ev *EventState) string {
	if ev == nil {
		return ""
	}
	label := "[MISP"
	if ev.ID != "" {
		label += " " + ev.ID
	} else {
		label += " New Event"
	}
	if ev.Offline {
		label += " (Offline)"
	}
	return label + "]"
}
