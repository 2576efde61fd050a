package engine

import (
	"context"
	"fmt"

	"db-sync/internal/dump"
	"db-sync/internal/errs"
	"db-sync/internal/filename"
	"db-sync/internal/preset"
	"db-sync/internal/schema"
	"db-sync/internal/storage"
)

// ExportRequest selects what to export. An empty Preset reuses the last
// saved selection, or the default preset if nothing was saved.
type ExportRequest struct {
	Preset  string
	Tables  []string // only used with preset.Custom
	OnTable func(done, total int, table *schema.Table)
}

// ExportResult describes a written dump.
type ExportResult struct {
	File        storage.File
	PresetName  string
	Environment string
	Tables      []string // display names written, in order
	Missing     []string // requested tables that do not exist
	Stats       dump.Stats
}

// Export writes the selected tables to a new dump file.
func (e *Engine) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if err := e.requireSource("export"); err != nil {
		return nil, err
	}
	key, custom := req.Preset, req.Tables
	if key == "" {
		sel, ok, err := preset.LoadSelection(ctx, e.Store)
		if err != nil {
			e.Logger.Warn("could not load last selection", "err", err)
		}
		if ok {
			key, custom = sel.Preset, sel.Tables
		} else {
			key = preset.Default
		}
	}

	names := e.Presets.Resolve(key, custom)
	if len(names) == 0 {
		return nil, errs.Validation("export", "no tables selected")
	}

	catalog, err := schema.Analyze(ctx, e.Source, e.Config.Prefix)
	if err != nil {
		return nil, errs.Execution("export", "could not list tables", err)
	}
	tables, missing := catalog.Resolve(names)
	if len(tables) == 0 {
		return nil, errs.Validation("export", "none of the selected tables exist: %v", names)
	}
	for _, m := range missing {
		e.Logger.Warn("skipping missing table", "table", m)
	}

	if err := preset.SaveSelection(ctx, e.Store, preset.Selection{Preset: key, Tables: names}); err != nil {
		e.Logger.Warn("could not save selection", "err", err)
	}

	res := &ExportResult{
		PresetName:  e.Presets.DisplayName(key),
		Environment: e.Config.Site.Environment(),
		Missing:     missing,
	}
	for _, t := range tables {
		res.Tables = append(res.Tables, t.Name)
	}

	name := filename.Encode(e.Now(), res.PresetName, res.Environment, false)
	if e.Config.Compress {
		name = filename.Compress(name)
	}

	w, err := e.Dir.Create(name)
	if err != nil {
		return nil, err
	}
	res.Stats, err = e.Generator.Write(ctx, w, tables, dump.Options{
		SiteURL: e.Config.Site.URL,
		OnTable: req.OnTable,
	})
	if err != nil {
		w.Abort()
		return nil, errs.Execution("export", "could not read tables", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	if res.File, err = e.Dir.Stat(name); err != nil {
		return nil, fmt.Errorf("failed to stat export: %w", err)
	}
	e.Logger.Info("export written", "file", name, "tables", res.Stats.Tables, "rows", res.Stats.Rows)
	return res, nil
}
