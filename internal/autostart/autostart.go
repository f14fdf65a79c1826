// Package autostart manages the XDG autostart entry that launches
// network-monitor on login. The entry is a fixed-name .desktop file in the
// per-user autostart directory pointing at the running executable.
package autostart

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/btxTruong/network-monitor/internal/logging"
)

const desktopFilename = "network-monitor.desktop"

const desktopTemplate = `[Desktop Entry]
Type=Application
Name=Network Monitor
Comment=Display network location country flag in system tray
Exec=%s
Icon=network-workgroup
Terminal=false
Categories=Network;System;Monitor;
X-GNOME-Autostart-enabled=true
StartupNotify=false
`

var (
	// ErrNoConfigDir indicates the user's config directory could not be resolved
	ErrNoConfigDir = errors.New("could not determine config directory")
	// ErrNoExecutable indicates the running executable's path could not be resolved
	ErrNoExecutable = errors.New("could not determine executable path")
)

// Manager creates and removes the autostart entry.
type Manager struct {
	configDir  string
	executable func() (string, error)
	logLevel   logging.LogLevel
}

// Option is a function that configures a Manager
type Option func(*Manager)

// WithConfigDir overrides the base config directory (used in tests)
func WithConfigDir(dir string) Option {
	return func(m *Manager) {
		m.configDir = dir
	}
}

// WithExecutable overrides executable path resolution (used in tests)
func WithExecutable(executable func() (string, error)) Option {
	return func(m *Manager) {
		m.executable = executable
	}
}

// WithLogLevel sets the log level for the manager
func WithLogLevel(logLevel logging.LogLevel) Option {
	return func(m *Manager) {
		m.logLevel = logLevel
	}
}

// NewManager creates a Manager with the given options
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		executable: os.Executable,
		logLevel:   logging.LogLevelError,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// autostartDir returns the per-user autostart directory
func (m *Manager) autostartDir() (string, error) {
	base := m.configDir
	if base == "" {
		var err error
		base, err = os.UserConfigDir()
		if err != nil {
			return "", ErrNoConfigDir
		}
	}
	return filepath.Join(base, "autostart"), nil
}

// desktopPath returns the full path to the .desktop file
func (m *Manager) desktopPath() (string, error) {
	dir, err := m.autostartDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, desktopFilename), nil
}

// desktopContent renders the .desktop file for the given executable path
func desktopContent(execPath string) string {
	return fmt.Sprintf(desktopTemplate, execPath)
}

// Setup enables autostart by writing the .desktop file. Idempotent: an
// existing entry is overwritten.
func (m *Manager) Setup() error {
	dir, err := m.autostartDir()
	if err != nil {
		return err
	}
	path, err := m.desktopPath()
	if err != nil {
		return err
	}

	execPath, err := m.executable()
	if err != nil {
		return ErrNoExecutable
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create autostart directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(desktopContent(execPath)), 0o644); err != nil {
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}

	if m.logLevel <= logging.LogLevelInfo {
		log.Printf("Autostart enabled: %s", path)
	}
	return nil
}

// Remove disables autostart by deleting the .desktop file. A missing entry
// is not an error.
func (m *Manager) Remove() error {
	path, err := m.desktopPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove desktop entry: %w", err)
	}

	if m.logLevel <= logging.LogLevelInfo {
		log.Println("Autostart disabled")
	}
	return nil
}

// IsEnabled reports whether the autostart entry currently exists
func (m *Manager) IsEnabled() bool {
	path, err := m.desktopPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
