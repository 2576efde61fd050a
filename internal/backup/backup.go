// Package backup snapshots the tables an import is about to overwrite and
// restores such snapshots.
package backup

import (
	"context"
	"log/slog"

	"db-sync/internal/dump"
	"db-sync/internal/errs"
	"db-sync/internal/filename"
	"db-sync/internal/schema"
	"db-sync/internal/source"
	"db-sync/internal/storage"
)

// Backup describes a written backup file.
type Backup struct {
	File    storage.File
	Tables  []string // physical tables backed up
	Skipped []string // tables in the dump that do not exist in the target
	Rows    int64
}

// Manager creates and restores backups in a storage directory.
type Manager struct {
	Source    *source.Source
	Dir       *storage.Dir
	Generator *dump.Generator
	Importer  *dump.Importer
	SiteURL   string
	Logger    *slog.Logger
}

// NewManager wires a Manager around src and dir.
func NewManager(src *source.Source, dir *storage.Dir, siteURL string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = src.Logger
	}
	return &Manager{
		Source:    src,
		Dir:       dir,
		Generator: dump.NewGenerator(src, logger),
		Importer:  dump.NewImporter(src, logger),
		SiteURL:   siteURL,
		Logger:    logger,
	}
}

// Create backs up every table that dumpText creates and that currently
// exists in the target. The backup is named after importName and replaces
// any earlier backup of the same import. It fails with an integrity error if
// dumpText defines no tables at all.
func (m *Manager) Create(ctx context.Context, importName, dumpText string) (*Backup, error) {
	referenced := dump.ExtractTables(dumpText)
	if len(referenced) == 0 {
		return nil, errs.Integrity("backup", "no tables found in import file %s", importName)
	}

	b := &Backup{}
	var tables []*schema.Table
	for _, name := range referenced {
		ok, err := m.Source.TableExists(ctx, name)
		if err != nil {
			return nil, errs.Execution("backup", "could not inspect target", err)
		}
		if !ok {
			b.Skipped = append(b.Skipped, name)
			continue
		}
		b.Tables = append(b.Tables, name)
		tables = append(tables, &schema.Table{Name: name, Physical: name})
	}

	name := filename.BackupName(importName)
	w, err := m.Dir.Create(name)
	if err != nil {
		return nil, err
	}
	stats, err := m.Generator.Write(ctx, w, tables, dump.Options{
		Backup:   true,
		SiteURL:  m.SiteURL,
		BackupOf: importName,
	})
	if err != nil {
		w.Abort()
		return nil, errs.Execution("backup", "could not read tables", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	f, err := m.Dir.Stat(name)
	if err != nil {
		return nil, err
	}
	b.File = f
	b.Rows = stats.Rows

	m.Logger.Info("backup created", "file", name, "tables", len(b.Tables), "skipped", len(b.Skipped), "rows", b.Rows)
	return b, nil
}

// Restore replays a backup file and deletes it once the import has been
// committed.
func (m *Manager) Restore(ctx context.Context, backupName string, opts dump.ImportOptions) (*dump.Result, error) {
	if err := storage.ValidateName(backupName); err != nil {
		return nil, err
	}
	if !filename.HasBackupSuffix(backupName) {
		return nil, errs.Validation("restore", "%q is not a backup file", backupName)
	}

	text, err := m.Dir.ReadAll(backupName)
	if err != nil {
		return nil, err
	}

	res := &dump.Result{}
	if len(dump.ExtractTables(text)) == 0 {
		// a header-only backup: none of the imported tables existed before
		m.Logger.Info("backup holds no tables", "file", backupName)
	} else if res, err = m.Importer.Import(ctx, text, opts); err != nil {
		return nil, err
	}

	if err := m.Dir.Remove(backupName); err != nil {
		// the restore itself is committed; a leftover backup is harmless
		m.Logger.Warn("could not delete restored backup", "file", backupName, "err", err)
		res.Errors = append(res.Errors, "delete backup: "+err.Error())
	}
	return res, nil
}
