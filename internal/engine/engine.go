// Package engine runs the user-facing operations: export, import, restore,
// delete, preview, listing and change checks.
package engine

import (
	"context"
	"log/slog"
	"time"

	"db-sync/internal/backup"
	"db-sync/internal/dump"
	"db-sync/internal/errs"
	"db-sync/internal/kvstore"
	"db-sync/internal/preset"
	"db-sync/internal/registry"
	"db-sync/internal/schema"
	"db-sync/internal/site"
	"db-sync/internal/source"
	"db-sync/internal/storage"
)

// Config holds the settings that do not change between operations.
type Config struct {
	// Prefix is stripped from physical table names to form display names.
	Prefix   string
	Site     site.Site
	Compress bool
}

// Engine binds a data source to a storage directory and a state store.
type Engine struct {
	Config    Config
	Source    *source.Source
	Dir       *storage.Dir
	Store     kvstore.Store
	Presets   *preset.Catalogue
	Generator *dump.Generator
	Importer  *dump.Importer
	Backups   *backup.Manager
	Registry  *registry.Registry
	Logger    *slog.Logger
	Now       func() time.Time
}

// New wires an Engine. src may be nil for file-only operations (listing,
// preview, delete, checks); the database operations then fail.
func New(cfg Config, src *source.Source, dir *storage.Dir, store kvstore.Store, presets *preset.Catalogue, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		Config:   cfg,
		Source:   src,
		Dir:      dir,
		Store:    store,
		Presets:  presets,
		Registry: registry.New(dir, store, logger),
		Logger:   logger,
		Now:      time.Now,
	}
	if src != nil {
		e.Generator = dump.NewGenerator(src, logger)
		e.Importer = dump.NewImporter(src, logger)
		e.Backups = backup.NewManager(src, dir, cfg.Site.URL, logger)
	}
	return e
}

func (e *Engine) requireSource(op string) error {
	if e.Source == nil {
		return errs.Validation(op, "no database configured")
	}
	return nil
}

// Tables returns the catalog of the data source with row counts.
func (e *Engine) Tables(ctx context.Context) (*schema.Catalog, error) {
	if err := e.requireSource("tables"); err != nil {
		return nil, err
	}
	c, err := schema.Analyze(ctx, e.Source, e.Config.Prefix)
	if err != nil {
		return nil, err
	}
	if err := c.CountRows(ctx, e.Source); err != nil {
		return nil, err
	}
	return c, nil
}

// Files lists dump and backup files, newest first.
func (e *Engine) Files() ([]storage.File, error) {
	return e.Dir.List()
}

// Check polls the storage directory for changes since the previous check.
func (e *Engine) Check(ctx context.Context) (*registry.Result, error) {
	return e.Registry.Poll(ctx)
}

// Delete removes a dump or backup file.
func (e *Engine) Delete(name string) error {
	if err := e.Dir.Remove(name); err != nil {
		return err
	}
	e.Logger.Info("file deleted", "file", name)
	return nil
}

// Preview reports the tables and row counts of a dump without importing it.
func (e *Engine) Preview(name string) (*dump.Preview, error) {
	text, err := e.Dir.ReadAll(name)
	if err != nil {
		return nil, err
	}
	return dump.BuildPreview(text, e.Config.Site.URL), nil
}
