// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package modules

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ph0sec/viper/internal/session"
)

// SessionSource exposes the open session to modules.
type SessionSource interface {
	Current() *session.Session
}

// FileInfo prints the properties of the open file.
type FileInfo struct {
	Base
	sessions SessionSource
}

// NewFileInfo returns a factory for the fileinfo module.
func NewFileInfo(sessions SessionSource) Factory {
	return func() Module {
		return &FileInfo{Base: NewBase("fileinfo"), sessions: sessions}
	}
}

// Run implements Module.
func (m *FileInfo) Run(ctx context.Context) error {
	if ok, err := m.ParseArgs(); !ok || err != nil {
		return err
	}

	sess := m.sessions.Current()
	if sess == nil || sess.File == nil {
		m.out.Error("No open session")
		return nil
	}
	f := sess.File

	mime, err := sniffType(f.Path)
	if err != nil {
		return err
	}

	m.out.Table([]string{"Key", "Value"}, [][]string{
		{"Name", f.Name},
		{"Path", f.Path},
		{"Size", fmt.Sprintf("%d", f.Size)},
		{"Type", mime},
		{"MD5", f.MD5},
		{"SHA1", f.SHA1},
		{"SHA256", f.SHA256},
	})
	return nil
}

// sniffType detects the content type from the first 512 bytes.
func sniffType(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(fh, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return http.DetectContentType(head[:n]), nil
}
