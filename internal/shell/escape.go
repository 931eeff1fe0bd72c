// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"io"
	"os/exec"
	"runtime"
)

// EscapeMarker starts a line that runs in the system shell.
const EscapeMarker = "!"

// EscapeRunner executes a shell-escape command line.
type EscapeRunner func(ctx context.Context, command string) error

// SystemShell runs commands through /bin/sh -c (cmd /C on Windows) attached
// to the given streams. The command is passed verbatim: whatever the
// operator types after "!" runs with the operator's privileges.
func SystemShell(stdin io.Reader, stdout, stderr io.Writer) EscapeRunner {
	return func(ctx context.Context, command string) error {
		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd", "/C", command)
		} else {
			cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
		}
		cmd.Stdin = stdin
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		return cmd.Run()
	}
}
