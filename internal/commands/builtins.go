// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ph0sec/viper/internal/project"
	"github.com/ph0sec/viper/internal/session"
	"github.com/ph0sec/viper/internal/storage"
	"github.com/ph0sec/viper/internal/util"
)

const timeLayout = "2006-01-02 15:04:05"

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// RegisterBuiltins adds the stock built-in commands to r.
func RegisterBuiltins(r *Registry) {
	r.Register(&Command{
		Name:        "help",
		Description: "Show this help message",
		Usage:       "help",
		Category:    "General",
		Handler:     handleHelp(r),
	})

	// Session commands
	r.Register(&Command{
		Name:        "open",
		Description: "Open a file or a stored sample by sha256",
		Usage:       "open <path|sha256>",
		Category:    "Session",
		Handler:     handleOpen,
	})
	r.Register(&Command{
		Name:        "close",
		Description: "Close the current session",
		Usage:       "close",
		Category:    "Session",
		Handler:     handleClose,
	})
	r.Register(&Command{
		Name:        "info",
		Description: "Show information on the open file",
		Usage:       "info",
		Category:    "Session",
		Handler:     handleInfo,
	})
	r.Register(&Command{
		Name:        "link",
		Description: "Link the session to an external event",
		Usage:       "link <event-id|new> [--offline] | link --remove",
		Category:    "Session",
		Handler:     handleLink,
	})
	r.Register(&Command{
		Name:        "sessions",
		Description: "List the sessions opened since startup",
		Usage:       "sessions",
		Category:    "Session",
		Handler:     handleSessions,
	})

	// Repository commands
	r.Register(&Command{
		Name:        "store",
		Description: "Store the open file in the repository",
		Usage:       "store",
		Category:    "Repository",
		Handler:     handleStore,
	})
	r.Register(&Command{
		Name:        "find",
		Description: "Find stored files",
		Usage:       "find <all|name|md5|sha1|sha256> [value]",
		Category:    "Repository",
		Handler:     handleFind,
	})
	r.Register(&Command{
		Name:        "analysis",
		Description: "List or show recorded module runs for the open file",
		Usage:       "analysis [id] [--export <file.yaml>]",
		Category:    "Repository",
		Handler:     handleAnalysis,
	})
	r.Register(&Command{
		Name:        "projects",
		Description: "List the existing projects",
		Usage:       "projects",
		Category:    "Repository",
		Handler:     handleProjects,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErr(err.Error())
	}
	return nil
}

// currentSession returns the open session, printing the standard notice
// when there is none.
func (c *Context) currentSession() *session.Session {
	if c.Sessions == nil {
		c.Out.Error("No open session")
		return nil
	}
	sess := c.Sessions.Current()
	if sess == nil || sess.File == nil {
		c.Out.Error("No open session")
		return nil
	}
	return sess
}

func (c *Context) requireStore() error {
	if c.Store == nil {
		return errors.New("no repository available")
	}
	return nil
}

// =============================================================================
// GENERAL
// =============================================================================

const syntaxHelp = `## Shell syntax

- ` + "`$self`" + ` is replaced with the path of the open file.
- ` + "`cmd1; cmd2`" + ` runs commands one after the other; a failing command does not stop the rest.
- ` + "`cmd > file`" + ` appends the output of the whole line to *file*.
- ` + "`!command`" + ` runs the rest of the line in the system shell, unfiltered.
- ` + "`exit`" + ` or ` + "`quit`" + ` leaves the shell.

Literal ` + "`;`" + ` and ` + "`>`" + ` characters inside arguments are not supported.
`

func handleHelp(r *Registry) Handler {
	return func(ctx context.Context, c *Context, args []string) error {
		rows := make([][]string, 0, len(r.commands)+1)
		for _, cmd := range r.All() {
			rows = append(rows, []string{cmd.Name, cmd.Description})
		}
		rows = append(rows, []string{"exit, quit", "Exit Viper"})

		c.Out.Info("Commands:")
		c.Out.Table([]string{"Command", "Description"}, rows)

		if c.Modules != nil && len(c.Modules.Names()) > 0 {
			mods := c.Modules.All()
			rows = make([][]string, 0, len(mods))
			for _, m := range mods {
				rows = append(rows, []string{m.Name, m.Description})
			}
			c.Out.Info("Modules:")
			c.Out.Table([]string{"Command", "Description"}, rows)
		} else {
			c.Out.Info("No modules loaded")
		}

		md := syntaxHelp
		if c.Config != nil && !c.Config.Shell.EscapeEnabled {
			md += "\nShell escape (`!`) is disabled in the configuration.\n"
		}
		c.Out.Markdown(md)
		return nil
	}
}

// =============================================================================
// SESSION
// =============================================================================

func handleOpen(ctx context.Context, c *Context, args []string) error {
	if len(args) != 1 {
		return usageErr("open expects exactly one path")
	}
	target := args[0]

	// A bare sha256 refers to a stored sample
	if sha256Pattern.MatchString(target) && c.Project != nil {
		if _, err := os.Stat(target); err != nil {
			target = c.Project.BinaryPath(target)
		}
	}

	sess, err := c.Sessions.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.Out.Error("The specified file does not exist: %s", args[0])
			return nil
		}
		if errors.Is(err, session.ErrNotRegular) {
			c.Out.Error("Not a regular file: %s", args[0])
			return nil
		}
		return err
	}

	c.Out.Info("Session opened on %s", sess.File.Path)
	return nil
}

func handleClose(ctx context.Context, c *Context, args []string) error {
	if !c.Sessions.IsSet() {
		c.Out.Info("No open session")
		return nil
	}
	c.Sessions.Close()
	c.Out.Info("Session closed")
	return nil
}

func handleInfo(ctx context.Context, c *Context, args []string) error {
	sess := c.currentSession()
	if sess == nil {
		return nil
	}
	f := sess.File

	stored := "unknown"
	if c.Store != nil {
		found, err := c.Store.Find("sha256", f.SHA256)
		if err != nil {
			return err
		}
		stored = "no"
		if found {
			stored = "yes"
		}
	}

	rows := [][]string{
		{"Name", f.Name},
		{"Path", f.Path},
		{"Size", fmt.Sprintf("%d", f.Size)},
		{"MD5", f.MD5},
		{"SHA1", f.SHA1},
		{"SHA256", f.SHA256},
		{"Stored", stored},
		{"Session", sess.ID},
	}
	if ev := sess.LinkedEvent; ev != nil {
		id := ev.ID
		if id == "" {
			id = "new (pending)"
		}
		if ev.Offline {
			id += " (offline)"
		}
		rows = append(rows, []string{"Event", id})
	}

	c.Out.Table([]string{"Key", "Value"}, rows)
	return nil
}

func handleLink(ctx context.Context, c *Context, args []string) error {
	fs := newFlags("link")
	offline := fs.BoolP("offline", "o", false, "work on the event without contacting the server")
	remove := fs.BoolP("remove", "r", false, "remove the link")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if c.currentSession() == nil {
		return nil
	}

	if *remove {
		if err := c.Sessions.UnlinkEvent(); err != nil {
			return err
		}
		c.Out.Info("Event link removed")
		return nil
	}

	if fs.NArg() != 1 {
		return usageErr("link expects an event id or \"new\"")
	}
	id := fs.Arg(0)
	if id == "new" {
		id = ""
	}
	if err := c.Sessions.LinkEvent(id, *offline); err != nil {
		return err
	}

	if id == "" {
		c.Out.Success("Session linked to a new event")
	} else {
		c.Out.Success("Session linked to event %s", id)
	}
	return nil
}

func handleSessions(ctx context.Context, c *Context, args []string) error {
	history := c.Sessions.History()
	if len(history) == 0 {
		c.Out.Info("No sessions opened yet")
		return nil
	}

	current := c.Sessions.Current()
	rows := make([][]string, 0, len(history))
	for i, s := range history {
		mark := ""
		if s == current {
			mark = "*"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1), s.ID, s.File.Name, s.CreatedAt.Format(timeLayout), mark,
		})
	}
	c.Out.Table([]string{"#", "ID", "File", "Opened", "Current"}, rows)
	return nil
}

// =============================================================================
// REPOSITORY
// =============================================================================

func handleStore(ctx context.Context, c *Context, args []string) error {
	sess := c.currentSession()
	if sess == nil {
		return nil
	}
	if err := c.requireStore(); err != nil {
		return err
	}
	f := sess.File

	if c.Project != nil {
		dest := c.Project.BinaryPath(f.SHA256)
		if _, err := os.Stat(dest); errors.Is(err, os.ErrNotExist) {
			if err := copyFile(f.Path, dest); err != nil {
				return fmt.Errorf("failed to copy sample into the repository: %w", err)
			}
		}
	}

	added, err := c.Store.AddFile(storage.File{
		Name:   f.Name,
		Size:   f.Size,
		MD5:    f.MD5,
		SHA1:   f.SHA1,
		SHA256: f.SHA256,
	})
	if err != nil {
		return err
	}
	if !added {
		c.Out.Warning("File \"%s\" already stored", f.Name)
		return nil
	}

	c.Logger.Info("file stored", zap.String("sha256", f.SHA256), zap.String("name", f.Name))
	c.Out.Success("Stored file \"%s\" to repository", f.Name)
	return nil
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(dest, data, 0644)
}

func handleFind(ctx context.Context, c *Context, args []string) error {
	if err := c.requireStore(); err != nil {
		return err
	}
	if len(args) == 0 {
		return usageErr("find expects a key")
	}

	key := args[0]
	value := strings.Join(args[1:], " ")
	if key != "all" && value == "" {
		return usageErr(fmt.Sprintf("find %s expects a value", key))
	}

	files, err := c.Store.Search(key, value)
	if errors.Is(err, storage.ErrInvalidKey) {
		return usageErr(fmt.Sprintf("unknown search key %q", key))
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		c.Out.Info("No matching files")
		return nil
	}

	rows := make([][]string, 0, len(files))
	for i, f := range files {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1), f.Name, fmt.Sprintf("%d", f.Size), f.SHA256,
		})
	}
	c.Out.Table([]string{"#", "Name", "Size", "SHA256"}, rows)
	c.Out.Info("%d files found", len(files))
	return nil
}

// analysisExport is the YAML shape of an exported module run.
type analysisExport struct {
	ID       string `yaml:"id"`
	Command  string `yaml:"command"`
	StoredAt string `yaml:"stored_at"`
	Results  any    `yaml:"results"`
}

func handleAnalysis(ctx context.Context, c *Context, args []string) error {
	fs := newFlags("analysis")
	export := fs.StringP("export", "e", "", "write the module runs to a YAML file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sess := c.currentSession()
	if sess == nil {
		return nil
	}
	if err := c.requireStore(); err != nil {
		return err
	}

	runs, err := c.Store.Analyses(sess.File.SHA256)
	if err != nil {
		return err
	}

	if *export != "" {
		return exportAnalyses(c, runs, *export)
	}

	if fs.NArg() == 1 {
		for _, run := range runs {
			if run.ID == fs.Arg(0) {
				c.Out.Info("Command: %s", run.CmdLine)
				c.Out.Info("Stored at: %s", run.StoredAt.Format(timeLayout))
				c.Out.Append(run.Results...)
				return nil
			}
		}
		c.Out.Error("Analysis %s not found", fs.Arg(0))
		return nil
	}

	if len(runs) == 0 {
		c.Out.Info("No analysis stored for this file")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{run.ID, run.CmdLine, run.StoredAt.Format(timeLayout)})
	}
	c.Out.Table([]string{"ID", "Command", "Stored at"}, rows)
	return nil
}

func exportAnalyses(c *Context, runs []storage.Analysis, path string) error {
	docs := make([]analysisExport, 0, len(runs))
	for _, run := range runs {
		docs = append(docs, analysisExport{
			ID:       run.ID,
			Command:  run.CmdLine,
			StoredAt: run.StoredAt.UTC().Format(time.RFC3339),
			Results:  run.Results,
		})
	}

	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode analyses: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return err
	}
	c.Out.Success("Exported %d analyses to %s", len(runs), path)
	return nil
}

func handleProjects(ctx context.Context, c *Context, args []string) error {
	if c.Config == nil {
		return errors.New("no configuration available")
	}
	names, err := project.List(c.Config.Paths.Storage)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		c.Out.Info("No projects, only the default repository")
		return nil
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		mark := ""
		if c.Project != nil && c.Project.Name == name {
			mark = "*"
		}
		created := ""
		if info, err := os.Stat(filepath.Join(c.Config.Paths.Storage, "projects", name)); err == nil {
			created = info.ModTime().Format(timeLayout)
		}
		rows = append(rows, []string{name, created, mark})
	}
	c.Out.Table([]string{"Project", "Modified", "Current"}, rows)
	return nil
}
