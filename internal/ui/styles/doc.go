// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colour palette used by the viper shell.

All colors use Lip Gloss AdaptiveColor so the prompt and command output stay
readable on both light and dark terminals.

# Palette

  - Cyan - prompt label and informational markers
  - Purple - project name and table headers
  - Magenta - the "not stored" marker and repository counters
  - Blue - linked event summary
  - Emerald - success markers
  - Amber - warnings and redirect notices
  - Rose - errors
*/
package styles
