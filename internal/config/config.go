// Package config loads the optional storytrace settings file. Every
// field has a working default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user settings.
type Config struct {
	// ExportDir is where export dialogs start. Empty means the user's
	// home directory.
	ExportDir string `yaml:"export_dir"`

	// CaseStoreDriver selects the case history backend: "sqlite"
	// (default) or "postgres".
	CaseStoreDriver string `yaml:"case_store_driver"`

	// CaseStoreDSN is the SQLite file path or PostgreSQL connection
	// string. Empty means a cases.db next to the config file.
	CaseStoreDSN string `yaml:"case_store_dsn"`

	// AnonymizeByDefault enables redaction as soon as a story loads.
	AnonymizeByDefault bool `yaml:"anonymize_by_default"`

	// LogLevel is a logrus level name; default "info".
	LogLevel string `yaml:"log_level"`
}

// DefaultDir returns the per-user settings directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(base, "storytrace"), nil
}

func defaults(dir string) Config {
	return Config{
		CaseStoreDriver: "sqlite",
		CaseStoreDSN:    filepath.Join(dir, "cases.db"),
		LogLevel:        "info",
	}
}

// Load reads the settings file at path, filling defaults for anything
// unset. A nonexistent file yields pure defaults.
func Load(path string) (Config, error) {
	cfg := defaults(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.CaseStoreDriver == "" {
		cfg.CaseStoreDriver = "sqlite"
	}
	if cfg.CaseStoreDSN == "" {
		cfg.CaseStoreDSN = filepath.Join(filepath.Dir(path), "cases.db")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// LoadDefault loads config.yaml from the per-user settings directory,
// creating the directory so the case store has somewhere to live.
func LoadDefault() (Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return defaults("."), err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return defaults(dir), fmt.Errorf("creating config dir: %w", err)
	}
	return Load(filepath.Join(dir, "config.yaml"))
}
