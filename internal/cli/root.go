// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ph0sec/viper/internal/shell"
)

type rootOptions struct {
	Options
	noBanner bool
}

// NewRootCommand builds the viper command tree. Running it without a
// subcommand starts the interactive shell.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "viper",
		Short:         "Binary analysis and management framework",
		Version:       formatVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the configuration file")
	cmd.PersistentFlags().StringVarP(&opts.Project, "project", "p", "", "open the named project")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.Flags().BoolVar(&opts.noBanner, "no-banner", false, "do not print the startup banner")

	cmd.AddCommand(newConfigCommand(&opts.Options))
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		DisplayError(os.Stderr, err, ConfigureColors("auto"))
		return ExitCode(err)
	}
	return ExitSuccess
}

// runShell starts the interactive loop on the terminal.
func runShell(ctx context.Context, opts *rootOptions, stdout io.Writer) error {
	app, err := Bootstrap(opts.Options)
	if err != nil {
		return err
	}
	defer app.Close()

	colors := ConfigureColors(app.Config.UI.Color)
	if !opts.noBanner {
		if err := app.Banner(stdout, colors); err != nil {
			app.Logger.Warn("banner unavailable", zap.Error(err))
		}
	}

	term := NewTerminal()
	defer term.Close()

	history := shell.NewHistoryStore(app.HistoryPath(), term)
	if n, err := history.Load(); err != nil {
		app.Logger.Warn("history not loaded", zap.String("path", history.Path()), zap.Error(err))
	} else {
		app.Logger.Debug("history loaded", zap.Int("entries", n))
	}
	defer saveHistory(history, app.Logger)

	term.SetCompleter(shell.NewCompleter(app.Commands, app.Modules).WordComplete)

	stopSignals := handleSignals(history, term, app)
	defer stopSignals()

	return app.NewShell(term, stdout, colors).Run(ctx)
}

func saveHistory(history *shell.HistoryStore, logger *zap.Logger) {
	if err := history.Save(); err != nil {
		logger.Warn("history not saved", zap.String("path", history.Path()), zap.Error(err))
	}
}

// handleSignals keeps SIGINT from terminating the process and saves history
// before exiting on SIGTERM or SIGHUP. Running commands observe SIGINT
// through their own context.
func handleSignals(history *shell.HistoryStore, term *Terminal, app *App) (stop func()) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)

	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, syscall.SIGTERM, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-interrupts:
			case sig := <-terminate:
				app.Logger.Info("terminating", zap.String("signal", sig.String()))
				saveHistory(history, app.Logger)
				term.Close()
				app.Close()
				fmt.Fprintln(os.Stdout)
				os.Exit(ExitSuccess)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(interrupts)
		signal.Stop(terminate)
		close(done)
	}
}
