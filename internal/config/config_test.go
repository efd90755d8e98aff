package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CaseStoreDriver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.CaseStoreDriver)
	}
	if cfg.CaseStoreDSN != filepath.Join(dir, "cases.db") {
		t.Errorf("dsn = %q", cfg.CaseStoreDSN)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.AnonymizeByDefault {
		t.Error("anonymize must default off")
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `export_dir: /exports
case_store_driver: postgres
case_store_dsn: postgres://analyst@db/cases
anonymize_by_default: true
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ExportDir != "/exports" {
		t.Errorf("export dir = %q", cfg.ExportDir)
	}
	if cfg.CaseStoreDriver != "postgres" || cfg.CaseStoreDSN != "postgres://analyst@db/cases" {
		t.Errorf("case store = %q %q", cfg.CaseStoreDriver, cfg.CaseStoreDSN)
	}
	if !cfg.AnonymizeByDefault {
		t.Error("anonymize not read")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("export_dir: /exports\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CaseStoreDriver != "sqlite" || cfg.LogLevel != "info" {
		t.Errorf("defaults not filled: %+v", cfg)
	}
	if cfg.CaseStoreDSN != filepath.Join(dir, "cases.db") {
		t.Errorf("dsn = %q", cfg.CaseStoreDSN)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
