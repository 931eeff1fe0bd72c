// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the artifact currently under analysis.
package session

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoSession is returned when an operation needs an open session.
	ErrNoSession = errors.New("no open session")

	// ErrNotRegular is returned when the path to open is not a regular file.
	ErrNotRegular = errors.New("not a regular file")
)

// =============================================================================
// SESSION TYPES
// =============================================================================

// FileObject describes the artifact a session is bound to.
type FileObject struct {
	Path   string
	Name   string
	Size   int64
	MD5    string
	SHA1   string
	SHA256 string
}

// LinkedEvent is an external event the session is associated with.
// An empty ID means the event is pending creation.
type LinkedEvent struct {
	ID      string
	Offline bool
}

// Session is one opened artifact.
type Session struct {
	ID          string
	File        *FileObject
	LinkedEvent *LinkedEvent
	CreatedAt   time.Time
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager holds at most one current session.
type Manager struct {
	mu      sync.Mutex
	current *Session
	history []*Session
}

// NewManager creates a manager with no open session.
func NewManager() *Manager {
	return &Manager{}
}

// IsSet reports whether a session is currently open.
func (m *Manager) IsSet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Current returns the open session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Open hashes the file at path and makes it the current session.
func (m *Manager) Open(path string) (*Session, error) {
	file, err := NewFileObject(path)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        generateSessionID(),
		File:      file,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = sess
	m.history = append(m.history, sess)
	return sess, nil
}

// Close drops the current session. Closing with nothing open is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// LinkEvent associates the current session with an external event.
// An empty id marks the event as pending creation.
func (m *Manager) LinkEvent(id string, offline bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNoSession
	}
	m.current.LinkedEvent = &LinkedEvent{ID: id, Offline: offline}
	return nil
}

// UnlinkEvent removes any linked event from the current session.
func (m *Manager) UnlinkEvent() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNoSession
	}
	m.current.LinkedEvent = nil
	return nil
}

// History returns the sessions opened during this process, oldest first.
func (m *Manager) History() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, len(m.history))
	copy(out, m.history)
	return out
}

// =============================================================================
// FILE OBJECTS
// =============================================================================

// NewFileObject reads the file at path and computes its digests.
func NewFileObject(path string) (*FileObject, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hMD5, hSHA1, hSHA256 := md5.New(), sha1.New(), sha256.New()
	if _, err := io.Copy(io.MultiWriter(hMD5, hSHA1, hSHA256), f); err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return &FileObject{
		Path:   abs,
		Name:   filepath.Base(abs),
		Size:   info.Size(),
		MD5:    hex.EncodeToString(hMD5.Sum(nil)),
		SHA1:   hex.EncodeToString(hSHA1.Sum(nil)),
		SHA256: hex.EncodeToString(hSHA256.Sum(nil)),
	}, nil
}

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "sess_" + uuid.NewString()[:8]
}
