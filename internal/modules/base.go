// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package modules

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ph0sec/viper/internal/output"
)

// Base carries what every module shares: its name, the raw arguments, a flag
// set and the output buffer. Stock modules embed it.
type Base struct {
	name  string
	args  []string
	flags *pflag.FlagSet
	out   *output.Buffer
}

// NewBase creates the shared part of a module.
func NewBase(name string) Base {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	flags.BoolP("help", "h", false, "show this help message")
	return Base{name: name, flags: flags, out: output.NewBuffer(nil)}
}

// SetCommandline stores the raw argument list.
func (b *Base) SetCommandline(args []string) {
	b.args = append([]string(nil), args...)
}

// Output returns the module output buffer.
func (b *Base) Output() *output.Buffer {
	return b.out
}

// Flags returns the module flag set so modules can declare their options.
func (b *Base) Flags() *pflag.FlagSet {
	return b.flags
}

// Args returns the positional arguments left after flag parsing.
func (b *Base) Args() []string {
	return b.flags.Args()
}

// ParseArgs parses the stored arguments. It returns false when the module
// should stop without running, which is the case after printing help.
func (b *Base) ParseArgs() (bool, error) {
	err := b.flags.Parse(b.args)
	if errors.Is(err, pflag.ErrHelp) {
		b.Usage()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", b.name, err)
	}
	if help, _ := b.flags.GetBool("help"); help {
		b.Usage()
		return false, nil
	}
	return true, nil
}

// Usage writes the flag summary to the output buffer.
func (b *Base) Usage() {
	b.out.Info("usage: %s [options]", b.name)
	for _, line := range strings.Split(strings.TrimRight(b.flags.FlagUsages(), "\n"), "\n") {
		if line != "" {
			b.out.Item("%s", strings.TrimSpace(line))
		}
	}
}
