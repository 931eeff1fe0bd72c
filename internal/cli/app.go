// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ph0sec/viper/internal/commands"
	"github.com/ph0sec/viper/internal/config"
	"github.com/ph0sec/viper/internal/logging"
	"github.com/ph0sec/viper/internal/modules"
	"github.com/ph0sec/viper/internal/project"
	"github.com/ph0sec/viper/internal/session"
	"github.com/ph0sec/viper/internal/shell"
	"github.com/ph0sec/viper/internal/storage"
)

// DatabaseName is the repository database file inside a project directory.
const DatabaseName = "viper.db"

// Options are the command-line settings for one shell run.
type Options struct {
	ConfigPath string
	Project    string
	Verbose    bool
}

// App holds everything a shell run needs.
type App struct {
	Config     *config.Config
	ConfigPath string
	Project    *project.Project
	Store      *storage.Store
	Sessions   *session.Manager
	Modules    *modules.Registry
	Commands   *commands.Registry
	Logger     *zap.Logger
}

// Bootstrap loads the configuration and opens the project, repository and
// logger, then registers modules and built-in commands.
func Bootstrap(opts Options) (*App, error) {
	cfg, path, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, startupErr("config", err)
	}

	proj, err := project.Open(cfg.Paths.Storage, opts.Project)
	if err != nil {
		return nil, startupErr("project", err)
	}

	logger, err := logging.New(cfg.Logging, proj.Path, opts.Verbose)
	if err != nil {
		return nil, startupErr("logging", err)
	}

	store, err := storage.Open(proj.File(DatabaseName))
	if err != nil {
		logger.Sync()
		return nil, startupErr("storage", err)
	}

	sessions := session.NewManager()
	mods := modules.NewRegistry()
	if err := modules.RegisterDefaults(mods, sessions); err != nil {
		store.Close()
		logger.Sync()
		return nil, startupErr("modules", err)
	}

	cmds := commands.NewRegistry(&commands.Context{
		Config:   cfg,
		Sessions: sessions,
		Project:  proj,
		Store:    store,
		Modules:  mods,
		Logger:   logger,
	})
	commands.RegisterBuiltins(cmds)

	logger.Info("viper started",
		zap.String("project", proj.Label()),
		zap.String("config", path),
		zap.String("storage", store.Path()))

	return &App{
		Config:     cfg,
		ConfigPath: path,
		Project:    proj,
		Store:      store,
		Sessions:   sessions,
		Modules:    mods,
		Commands:   cmds,
		Logger:     logger,
	}, nil
}

// NewShell builds the interactive shell on top of the app.
func (a *App) NewShell(reader shell.LineReader, out io.Writer, styled bool) *shell.Shell {
	return shell.New(shell.Config{
		Reader:        reader,
		Out:           out,
		Styled:        styled,
		Commands:      a.Commands,
		Modules:       a.Modules,
		Sessions:      a.Sessions,
		Store:         a.Store,
		ProjectName:   a.Project.Name,
		StoreOutput:   a.Config.Modules.StoreOutput,
		EscapeEnabled: a.Config.Shell.EscapeEnabled,
		Escape:        shell.SystemShell(os.Stdin, out, os.Stderr),
		Logger:        a.Logger,
	})
}

// HistoryPath returns the project-scoped history file.
func (a *App) HistoryPath() string {
	return a.Project.File(a.Config.Shell.HistoryFile)
}

// Banner prints the startup logo and repository summary.
func (a *App) Banner(w io.Writer, colors bool) error {
	count, err := a.Store.FileCount()
	if err != nil {
		return fmt.Errorf("failed to count stored files: %w", err)
	}
	PrintBanner(w, colors, Version, a.Project.Label(), count)
	return nil
}

// Close releases the repository and flushes the log.
func (a *App) Close() error {
	var errs []error
	if err := a.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	a.Logger.Sync()
	return errors.Join(errs...)
}
