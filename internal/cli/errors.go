// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error reporting and exit codes for the viper binary.
//
// STANDARDIZED PATTERN:
//   - startup steps return wrapped errors, never print and continue
//   - Execute prints the error once and maps it to an exit code

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/ph0sec/viper/internal/config"
	"github.com/ph0sec/viper/internal/project"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// StartupError is a failure while preparing the shell.
type StartupError struct {
	Stage string // e.g. "config", "storage"
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

func startupErr(stage string, err error) error {
	return &StartupError{Stage: stage, Err: err}
}

// UsageError reports invalid command-line usage.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	var startup *StartupError
	var usage *UsageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage), errors.Is(err, project.ErrInvalidName):
		return ExitUsageError
	case config.IsValidationError(err):
		return ExitConfigError
	case errors.As(err, &startup) && startup.Stage == "config":
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}

// DisplayError prints err in the standard format.
func DisplayError(w io.Writer, err error, colors bool) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", render(colors, ErrorStyle, "[!] Error:"), err)
}
