package dump

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"db-sync/internal/errs"
	"db-sync/internal/source"
	"db-sync/internal/splitter"
)

const statementPreview = 100

// Result tallies a completed import.
type Result struct {
	TablesProcessed int
	RowsImported    int
	// Errors holds non-fatal problems, such as a failed session hook. A
	// statement failure is never recorded here: it aborts the import.
	Errors []string
	// URLRewrites counts string literals rewritten from the dump's source URL.
	URLRewrites int
}

// ImportOptions controls an import.
type ImportOptions struct {
	// TargetURL enables URL rewriting when it differs from the dump's
	// "Source URL" header.
	TargetURL string
	// OnStatement is called after each executed statement.
	OnStatement func(done, total int)
}

// Importer replays dump text inside a single transaction.
type Importer struct {
	Source *source.Source
	Logger *slog.Logger
}

// NewImporter creates an Importer writing to src.
func NewImporter(src *source.Source, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = src.Logger
	}
	return &Importer{Source: src, Logger: logger}
}

// Import executes every statement of text in order. Either all statements
// are committed or the transaction is rolled back and an execution error
// naming the failing statement is returned.
func (im *Importer) Import(ctx context.Context, text string, opts ImportOptions) (*Result, error) {
	res := &Result{}

	if opts.TargetURL != "" {
		if from := ReadHeader(text).Get(FieldSourceURL); from != "" && from != opts.TargetURL {
			text, res.URLRewrites = RewriteQuoted(text, from, opts.TargetURL)
			im.Logger.Info("rewrote site url", "from", from, "to", opts.TargetURL, "count", res.URLRewrites)
		}
	}

	stmts := splitter.Split(text)
	if len(stmts) == 0 {
		return nil, errs.Validation("import", "dump contains no statements")
	}

	tx, err := im.Source.Begin(ctx)
	if err != nil {
		return nil, errs.Execution("import", "could not start transaction", err)
	}

	d := im.Source.Dialect
	if err := d.BeforeImport(ctx, tx); err != nil {
		im.Logger.Warn("before-import hook failed", "err", err)
		res.Errors = append(res.Errors, fmt.Sprintf("before import: %v", err))
	}

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			im.rollback(tx)
			return nil, errs.Execution("import",
				fmt.Sprintf("statement %d of %d failed: %s", i+1, len(stmts), truncate(stmt, statementPreview)), err)
		}

		switch {
		case IsCreateTable(stmt):
			res.TablesProcessed++
		case IsInsert(stmt):
			res.RowsImported++
		}

		if opts.OnStatement != nil {
			opts.OnStatement(i+1, len(stmts))
		}
	}

	if err := d.AfterImport(ctx, tx); err != nil {
		im.Logger.Warn("after-import hook failed", "err", err)
		res.Errors = append(res.Errors, fmt.Sprintf("after import: %v", err))
	}

	if err := tx.Commit(); err != nil {
		im.rollback(tx)
		return nil, errs.Execution("import", "commit failed", err)
	}

	im.Logger.Info("import committed", "tables", res.TablesProcessed, "rows", res.RowsImported)
	return res, nil
}

func (im *Importer) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		im.Logger.Error("rollback failed", "err", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
