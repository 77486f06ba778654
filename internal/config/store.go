package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/docon/internal/fault"
	"github.com/muurk/docon/internal/logging"
)

const (
	appName    = "docon"
	configFile = "config.yaml"
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/docon or $HOME/.config/docon
//   - macOS: $HOME/.config/docon
//   - Windows: %LOCALAPPDATA%\docon
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the default settings file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// codec encodes and decodes one settings file format.
type codec struct {
	name      string
	marshal   func(*Settings) ([]byte, error)
	unmarshal func([]byte, *Settings) error
	header    bool // format supports '#' comments
}

var (
	yamlCodec = codec{
		name:      "yaml",
		marshal:   func(s *Settings) ([]byte, error) { return yaml.Marshal(s) },
		unmarshal: func(b []byte, s *Settings) error { return yaml.Unmarshal(b, s) },
		header:    true,
	}
	jsonCodec = codec{
		name: "json",
		marshal: func(s *Settings) ([]byte, error) {
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return nil, err
			}
			return append(data, '\n'), nil
		},
		unmarshal: func(b []byte, s *Settings) error { return json.Unmarshal(b, s) },
	}
	tomlCodec = codec{
		name:      "toml",
		marshal:   func(s *Settings) ([]byte, error) { return toml.Marshal(s) },
		unmarshal: func(b []byte, s *Settings) error { return toml.Unmarshal(b, s) },
		header:    true,
	}
)

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec
	case ".toml":
		return tomlCodec
	default:
		return yamlCodec
	}
}

// Store loads and saves Settings in a single file.
// The format follows the file extension: .json, .toml, anything else is YAML.
type Store struct {
	path  string
	codec codec
	mu    sync.Mutex
}

// NewStore creates a store for the given path.
func NewStore(path string) *Store {
	return &Store{
		path:  path,
		codec: codecFor(path),
	}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Format returns the codec name (yaml, json or toml).
func (s *Store) Format() string {
	return s.codec.name
}

// Load reads the settings file.
// A missing or unparsable file yields the defaults, which are written back
// immediately. Short per-channel tables are backfilled.
func (s *Store) Load() *Settings {
	settings, err := s.read()
	if err == nil {
		return settings
	}

	if errors.Is(err, fs.ErrNotExist) {
		logging.Info("Settings file not found, creating defaults", zap.String("path", s.path))
	} else {
		logging.Warn("Failed to read settings, using defaults",
			zap.String("path", s.path),
			zap.Error(err),
		)
	}

	settings = Default()
	_ = s.Save(settings)
	return settings
}

func (s *Store) read() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("settings file is empty")
	}

	// Keys missing from the file keep their default values
	settings := Default()
	if err := s.codec.unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s settings: %w", s.codec.name, err)
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s settings: %w", s.codec.name, err)
	}
	return settings, nil
}

// Save writes the settings atomically.
// Failures are logged and returned as a persistence fault; callers treat
// them as warnings.
func (s *Store) Save(settings *Settings) error {
	if err := s.write(settings); err != nil {
		logging.Warn("Failed to save settings",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return fault.NewPersistenceError(s.path, err)
	}
	logging.Debug("Settings saved", zap.String("path", s.path))
	return nil
}

func (s *Store) write(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := s.codec.marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if s.codec.header {
		header := []byte(`# docon settings
# ch2Coil / invert: index 0 unused, index 1 = DO1, index 2 = DO2
# ch2Coil -1 = channel not mapped

`)
		data = append(header, data...)
	}

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}
