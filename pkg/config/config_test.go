package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
	if _, err = os.Stat(path); err != nil {
		t.Fatalf("default config file was not written: %v", err)
	}

	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading the written config failed: %v", err)
	}
	if !reflect.DeepEqual(again, cfg) {
		t.Errorf("reloaded config differs: %+v", again)
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "path_config": {"images_dir": "./out", "database_path": ""},
  "generate_config": {"continue_on_error": false, "problem_id": "012", "filter": {"type": "logical-deduction", "limit": 3}},
  "template_config": null
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Paths.ImagesDir != "./out" {
		t.Errorf("ImagesDir = %q, want ./out", cfg.Paths.ImagesDir)
	}
	if cfg.Paths.CatalogPath != DefaultPathConfig().CatalogPath {
		t.Errorf("unset fields should keep defaults, got catalog path %q", cfg.Paths.CatalogPath)
	}
	if cfg.Paths.DatabaseFile() != "" {
		t.Errorf("empty database path should disable the store")
	}
	if cfg.Generate.ContinueOnError || cfg.Generate.ProblemID != "012" {
		t.Errorf("unexpected generate config %+v", cfg.Generate)
	}
	if cfg.Generate.Filter.Type != "logical-deduction" || cfg.Generate.Filter.Limit != 3 {
		t.Errorf("unexpected filter %+v", cfg.Generate.Filter)
	}
	if cfg.Templates == nil || cfg.Templates.TimeLimit != "44:59" {
		t.Errorf("null template section should fall back to defaults, got %+v", cfg.Templates)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected a parse error, got %v", err)
	}
}

func TestPathConfig_DatabaseFile(t *testing.T) {
	p := DefaultPathConfig()
	if got := p.DatabaseFile(); got != "./data/mensagen.db" {
		t.Errorf("DatabaseFile() = %q", got)
	}
}

func TestPathConfig_EnsureDirs(t *testing.T) {
	root := t.TempDir()
	p := &PathConfig{
		DataDir:      filepath.Join(root, "data"),
		ImagesDir:    filepath.Join(root, "images"),
		DatabasePath: filepath.Join(root, "db", "store.db") + "?_busy_timeout=5000",
	}
	if err := p.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	for _, dir := range []string{"data", "images", "db"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Errorf("directory %s was not created", dir)
		}
	}
}

func TestNewLogger(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}

	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "problem", "009")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "problem=009") {
		t.Errorf("unexpected log output %q", out)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("logger should not be enabled for info")
	}
}
