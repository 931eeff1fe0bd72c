// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ph0sec/viper/internal/config"
)

func newConfigCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initConfig(opts.ConfigPath, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.OutOrStdout(), opts.ConfigPath)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "List the configuration search paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, p := range config.SearchPaths() {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathCmd)
	return cmd
}

// initConfig writes the default configuration to path, or to the per-user
// location when path is empty.
func initConfig(path string, force bool) (string, error) {
	if path == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return "", startupErr("config", err)
		}
		path = filepath.Join(dir, config.FileName)
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", &UsageError{Err: fmt.Errorf("%s already exists (use --force to overwrite)", path)}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", startupErr("config", err)
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return "", startupErr("config", err)
	}
	return path, nil
}

func showConfig(w io.Writer, explicit string) error {
	cfg, path, err := config.Load(explicit)
	if err != nil {
		return startupErr("config", err)
	}
	if path == "" {
		path = "built-in defaults"
	}
	fmt.Fprintf(w, "# loaded from %s\n", path)
	return toml.NewEncoder(w).Encode(cfg)
}
