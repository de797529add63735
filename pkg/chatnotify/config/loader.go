package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chatnotify/chatnotify-go/internal/safefile"
)

// MaxConfigFileSize is the maximum allowed size for a config file (1MB).
const MaxConfigFileSize = 1 * 1024 * 1024

// Format is the encoding of a config file.
type Format int

const (
	// FormatJSON is the default encoding.
	FormatJSON Format = iota
	// FormatYAML is used for .yaml and .yml files.
	FormatYAML
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// sanitizePathError removes the path from os.PathError so error messages
// never expose file system paths.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and parses a config file. Only regular files are accepted.
// The result is not validated; call Validate before use.
func Load(path string) (*Config, error) {
	data, err := safefile.ReadFile(path, MaxConfigFileSize)
	if errors.Is(err, safefile.ErrTooLarge) {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrConfigTooLarge, MaxConfigFileSize)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", sanitizePathError(err))
	}
	return LoadBytes(data, FormatForPath(path))
}

// LoadBytes parses a config document.
func LoadBytes(data []byte, format Format) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrConfigEmpty
	}
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxConfigFileSize)
	}

	var c Config
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	if c.Version > SupportedVersion {
		return nil, fmt.Errorf("%w: %d (only version %d is supported)", ErrUnsupportedVersion, c.Version, SupportedVersion)
	}
	return &c, nil
}

// LoadOrDefault loads and validates the config at path. When the file
// cannot be loaded the default config is returned together with the load
// error; otherwise the error carries the repaired validation issues, if any.
// The returned config is always usable.
func LoadOrDefault(path, profileName string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return Default(profileName), err
	}
	return c, c.Validate(profileName)
}

// Marshal encodes c in the given format.
func Marshal(c *Config, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(c)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes c to path atomically, encoded by the path's extension.
func Save(path string, c *Config) error {
	data, err := Marshal(c, FormatForPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".chatnotify-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", sanitizePathError(err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", sanitizePathError(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", sanitizePathError(err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", sanitizePathError(err))
	}
	return nil
}
