// Package app holds the start-up sequence shared by the command line tools.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/CTAG07/mensagen/pkg/catalog"
	"github.com/CTAG07/mensagen/pkg/config"
	"github.com/CTAG07/mensagen/pkg/render"
)

// Env is the loaded configuration plus the resources built from it.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	// Store is nil when no database is configured.
	Store *catalog.Store
	db    *sql.DB
}

// Open loads the configuration at path, builds the logger and creates the
// working directories. When a database is configured it is opened, its
// schema is set up and a Store is prepared on it.
func Open(path string) (*Env, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	env := &Env{
		Config: cfg,
		Logger: config.NewLogger(os.Stdout, cfg.Paths.LogLevel),
	}

	if err = cfg.Paths.EnsureDirs(); err != nil {
		return nil, err
	}

	if cfg.Paths.DatabasePath == "" {
		env.Logger.Debug("No database configured, catalog store disabled")
		return env, nil
	}

	db, err := catalog.OpenDB(cfg.Paths.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = catalog.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup catalog schema: %w", err)
	}
	store, err := catalog.NewStore(db, env.Logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare catalog store: %w", err)
	}
	env.db = db
	env.Store = store
	return env, nil
}

// TemplateManager installs any missing default templates into the
// configured template directory and loads the directory.
func (e *Env) TemplateManager() (*render.TemplateManager, error) {
	dir := e.Config.Paths.TemplateDir
	written, err := render.InstallDefaults(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to install default templates: %w", err)
	}
	if len(written) > 0 {
		e.Logger.Info("Installed default templates", "dir", dir, "files", written)
	}

	tm, err := render.NewTemplateManager(e.Logger, e.Config.Templates, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	return tm, nil
}

// Close releases the store and the database connection.
func (e *Env) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
	if e.db != nil {
		e.Logger.Debug("Closing database connection.")
		if err := e.db.Close(); err != nil {
			e.Logger.Error("Failed to close database", "error", err)
		}
	}
}
