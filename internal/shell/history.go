// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ph0sec/viper/internal/util"
)

// HistoryEditor is the line editor whose history is persisted.
type HistoryEditor interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// HistoryStore loads and saves line history in a project-scoped file.
type HistoryStore struct {
	path   string
	editor HistoryEditor

	mu sync.Mutex
}

// NewHistoryStore creates a store for the history file at path.
func NewHistoryStore(path string, editor HistoryEditor) *HistoryStore {
	return &HistoryStore{path: path, editor: editor}
}

// Path returns the history file path.
func (h *HistoryStore) Path() string {
	return h.path
}

// Load reads the history file into the editor. A missing file is not an error.
func (h *HistoryStore) Load() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	n, err := h.editor.ReadHistory(f)
	if err != nil {
		return n, fmt.Errorf("failed to read history: %w", err)
	}
	return n, nil
}

// Save writes the editor history to the history file atomically. It is safe
// to call from a signal handler while the loop is running.
func (h *HistoryStore) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := util.AtomicWriteFrom(h.path, 0600, func(w io.Writer) error {
		_, err := h.editor.WriteHistory(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
