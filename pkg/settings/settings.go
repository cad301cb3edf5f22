// Package settings persists per-app extraction configuration.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mtkohut/spendwatch/pkg/api"
)

// entry is the stored state of one source app.
type entry struct {
	Known    bool            `json:"known" koanf:"known"`
	Used     bool            `json:"used" koanf:"used"`
	Settings api.AppSettings `json:"settings" koanf:"settings"`
}

// FileStore is a JSON-file-backed settings store. Safe for concurrent
// use within one process; it is not meant to be shared across processes.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	apps map[string]entry
}

// NewFileStore opens (or initializes) a file-backed store at path.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &FileStore{
		path:   path,
		logger: logger,
		apps:   make(map[string]entry),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("settings file not found, starting empty", "path", path)
		return s, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("loading settings file: %w", err)
	}
	if err := k.UnmarshalWithConf("", &s.apps, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling settings file: %w", err)
	}

	logger.Info("settings loaded", "path", path, "apps", len(s.apps))
	return s, nil
}

// IsKnown reports whether the app was ever registered.
func (s *FileStore) IsKnown(_ context.Context, appID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[appID].Known, nil
}

// Register marks an app as known. Registering a known app is a no-op.
func (s *FileStore) Register(_ context.Context, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.apps[appID]
	if e.Known {
		return nil
	}
	e.Known = true
	s.apps[appID] = e

	s.logger.Info("registered new source app", "app", appID)
	return s.persistLocked()
}

// IsUsed reports whether the user has configured the app.
func (s *FileStore) IsUsed(_ context.Context, appID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[appID].Used, nil
}

// AppSettings returns the app's configuration, zero when unconfigured.
func (s *FileStore) AppSettings(_ context.Context, appID string) (api.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[appID].Settings, nil
}

// Configure stores an app's settings and marks it used.
func (s *FileStore) Configure(_ context.Context, appID string, cfg api.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.apps[appID]
	e.Known = true
	e.Used = true
	e.Settings = cfg
	s.apps[appID] = e

	return s.persistLocked()
}

func (s *FileStore) persistLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.apps, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
