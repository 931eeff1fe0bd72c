// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "2.0.0-dev"
	GitCommit = ""
)

const logo = `         _
        (_)
   _   _ _ ____  _____  ____
  | | | | |  _ \| ___ |/ ___)
   \ V /| | |_| | ____| |
    \_/ |_|  __/|_____)_| v%s
          |_|
`

// formatVersion returns the version string with optional git commit.
func formatVersion() string {
	v := Version
	if GitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", GitCommit)
	}
	return v + " " + runtime.Version()
}

// PrintBanner writes the logo followed by the stored file count of the
// project repository.
func PrintBanner(w io.Writer, colors bool, version, label string, count int) {
	fmt.Fprintln(w, render(colors, LogoStyle, strings.TrimRight(fmt.Sprintf(logo, version), "\n")))
	fmt.Fprintln(w)
	fmt.Fprintln(w,
		render(colors, BannerStyle, "You have ")+
			render(colors, BannerBoldStyle, fmt.Sprint(count))+
			render(colors, BannerStyle, " files in your ")+
			render(colors, BannerBoldStyle, label)+
			render(colors, BannerStyle, " repository"))
}
