package engine

import (
	"context"

	"db-sync/internal/backup"
	"db-sync/internal/dump"
	"db-sync/internal/errs"
	"db-sync/internal/filename"
	"db-sync/internal/storage"
)

// ImportRequest names the dump to apply.
type ImportRequest struct {
	Name string
	// Keep retains the dump file after a successful import.
	Keep        bool
	OnStatement func(done, total int)
}

// ImportResult is the outcome of a committed import.
type ImportResult struct {
	*dump.Result
	Backup  *backup.Backup
	Deleted bool
}

// Import backs up the tables the dump will replace, replays the dump in one
// transaction and then deletes the dump file unless Keep is set.
func (e *Engine) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if err := e.requireSource("import"); err != nil {
		return nil, err
	}
	if err := storage.ValidateName(req.Name); err != nil {
		return nil, err
	}
	if filename.HasBackupSuffix(req.Name) {
		return nil, errs.Validation("import", "%q is a backup; use restore", req.Name)
	}

	text, err := e.Dir.ReadAll(req.Name)
	if err != nil {
		return nil, err
	}

	b, err := e.Backups.Create(ctx, req.Name, text)
	if err != nil {
		return nil, err
	}

	res, err := e.Importer.Import(ctx, text, dump.ImportOptions{
		TargetURL:   e.Config.Site.URL,
		OnStatement: req.OnStatement,
	})
	if err != nil {
		return nil, err
	}

	out := &ImportResult{Result: res, Backup: b}
	if !req.Keep {
		if err := e.Dir.Remove(req.Name); err != nil {
			e.Logger.Warn("could not delete imported dump", "file", req.Name, "err", err)
			res.Errors = append(res.Errors, "delete dump: "+err.Error())
		} else {
			out.Deleted = true
		}
	}
	return out, nil
}

// Restore replays a backup file and deletes it afterwards.
func (e *Engine) Restore(ctx context.Context, name string, onStatement func(done, total int)) (*dump.Result, error) {
	if err := e.requireSource("restore"); err != nil {
		return nil, err
	}
	return e.Backups.Restore(ctx, name, dump.ImportOptions{OnStatement: onStatement})
}
