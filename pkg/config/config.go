package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/mensagen/pkg/catalog"
	"github.com/CTAG07/mensagen/pkg/render"
	"github.com/natefinch/atomic"
)

// DefaultPath is where every command looks for its configuration.
const DefaultPath = "./config.json"

// PathConfig holds the locations of every file the tools read or write.
type PathConfig struct {
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	SourcePath   string `json:"source_path"`
	CatalogPath  string `json:"catalog_path"`
	TemplateDir  string `json:"template_dir"`
	ImagesDir    string `json:"images_dir"`
	DatabasePath string `json:"database_path"`
}

// GenerateConfig holds the settings of the page generators.
type GenerateConfig struct {
	// ContinueOnError makes the bulk generator log a failed problem and move
	// on. When false the first failure stops the run.
	ContinueOnError bool `json:"continue_on_error"`

	// ProblemID is the catalog id rendered by the single-problem generator.
	ProblemID string `json:"problem_id"`

	// Filter selects the problems the bulk generator renders.
	Filter catalog.Filter `json:"filter"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Paths     *PathConfig            `json:"path_config"`
	Templates *render.TemplateConfig `json:"template_config"`
	Generate  *GenerateConfig        `json:"generate_config"`
}

// DefaultPathConfig creates a path configuration with default values.
func DefaultPathConfig() *PathConfig {
	return &PathConfig{
		LogLevel:     "info",
		DataDir:      "./data",
		SourcePath:   "./data/extracted_mensa_questions.json",
		CatalogPath:  "./data/problems-index.json",
		TemplateDir:  "./templates",
		ImagesDir:    "./images",
		DatabasePath: "./data/mensagen.db?_journal_mode=WAL&_busy_timeout=5000",
	}
}

// DefaultGenerateConfig creates a generator configuration with default values.
func DefaultGenerateConfig() *GenerateConfig {
	return &GenerateConfig{
		ContinueOnError: true,
		ProblemID:       "009",
	}
}

// DefaultConfig returns a Config with every section set to its defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths:     DefaultPathConfig(),
		Templates: render.DefaultConfig(),
		Generate:  DefaultGenerateConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Sections
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The tools still work with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.fillDefaults()
	return config, nil
}

// fillDefaults restores sections that the file set to null.
func (c *Config) fillDefaults() {
	if c.Paths == nil {
		c.Paths = DefaultPathConfig()
	}
	if c.Templates == nil {
		c.Templates = render.DefaultConfig()
	}
	if c.Generate == nil {
		c.Generate = DefaultGenerateConfig()
	}
}

// DatabaseFile returns the file part of DatabasePath, without query
// parameters, or "" when no database is configured.
func (p *PathConfig) DatabaseFile() string {
	file, _, _ := strings.Cut(p.DatabasePath, "?")
	return file
}

// EnsureDirs creates the data, images and database directories.
func (p *PathConfig) EnsureDirs() error {
	dirs := []string{p.DataDir, p.ImagesDir}
	if db := p.DatabaseFile(); db != "" {
		dirs = append(dirs, filepath.Dir(db))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ParseLevel maps a config log level to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}
