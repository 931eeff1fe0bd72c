// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the viper command-line entry point.
//
// The root command boots the application (configuration, project,
// repository, logging, modules and built-in commands) and hands the terminal
// to the interactive shell:
//
//	viper                   start the shell on the default project
//	viper -p apt28          start the shell on a named project
//	viper config init       write ~/.viper/viper.toml with defaults
//	viper config show       print the effective configuration
//
// Input goes through liner for line editing, persistent history and tab
// completion. SIGINT never terminates the process: at the prompt it clears
// the line and during a command it interrupts that command only.
package cli
