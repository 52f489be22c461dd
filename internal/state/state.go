package state

import (
	"os"
	"path/filepath"
	"sync"
)

// State holds the global runtime state of the service process.
type State struct {
	mu sync.RWMutex

	version string
	verbose bool
}

// Global is the singleton state instance.
var Global = &State{
	version: "dev",
}

func (s *State) GetVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *State) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

func (s *State) GetVerbose() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verbose
}

func (s *State) SetVerbose(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verbose = v
}

// --- Paths ---

const (
	appName = "transaction-service"
	homeEnv = "TRANSACTION_SERVICE_HOME"
)

// AppDir returns $TRANSACTION_SERVICE_HOME, or ~/.local/share/transaction-service.
func AppDir() string {
	if dir := os.Getenv(homeEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigPath returns the path of config.json inside AppDir.
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.json")
}

// LogDir returns the audit log directory inside AppDir.
func LogDir() string {
	return filepath.Join(AppDir(), "logs")
}

// EnsurePaths creates the app and log directories.
func EnsurePaths() error {
	if err := os.MkdirAll(AppDir(), 0700); err != nil {
		return err
	}
	return os.MkdirAll(LogDir(), 0700)
}
