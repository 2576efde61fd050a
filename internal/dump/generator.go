package dump

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
	"db-sync/internal/source"
)

const timeFormat = "2006-01-02 15:04:05"

// Options controls the header and progress reporting of a generated dump.
type Options struct {
	// Backup switches the header from export fields to backup fields.
	Backup bool
	// SiteURL is written as "Source URL" for exports and "Target URL" for backups.
	SiteURL string
	// BackupOf names the import file a backup protects.
	BackupOf string
	// OnTable is called after each table has been written.
	OnTable func(done, total int, table *schema.Table)
}

// Stats summarizes a generated dump.
type Stats struct {
	Tables int
	Rows   int64
	Bytes  int64
}

// Generator writes tables of a data source as dump text.
type Generator struct {
	Source *source.Source
	Logger *slog.Logger
	Now    func() time.Time
}

// NewGenerator creates a Generator reading from src.
func NewGenerator(src *source.Source, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = src.Logger
	}
	return &Generator{Source: src, Logger: logger, Now: time.Now}
}

// Generate renders the dump for tables into a string.
func (g *Generator) Generate(ctx context.Context, tables []*schema.Table, opts Options) (string, Stats, error) {
	var b strings.Builder
	stats, err := g.Write(ctx, &b, tables, opts)
	if err != nil {
		return "", stats, err
	}
	return b.String(), stats, nil
}

// Write streams the dump for tables to w in the given order: per table a
// DROP TABLE IF EXISTS, the engine's own CREATE TABLE, then one INSERT per row.
func (g *Generator) Write(ctx context.Context, w io.Writer, tables []*schema.Table, opts Options) (Stats, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	var stats Stats

	g.writeHeader(bw, tables, opts)

	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rows, err := g.writeTable(ctx, bw, t)
		if err != nil {
			return stats, err
		}
		stats.Tables++
		stats.Rows += rows
		g.Logger.Debug("table written", "table", t.Physical, "rows", rows)
		if opts.OnTable != nil {
			opts.OnTable(i+1, len(tables), t)
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write dump: %w", err)
	}
	stats.Bytes = cw.n
	return stats, nil
}

func (g *Generator) writeHeader(w *bufio.Writer, tables []*schema.Table, opts Options) {
	name := g.Source.Dialect.Name()
	if opts.Backup {
		fmt.Fprintf(w, "-- %s Database Backup\n", name)
		fmt.Fprintf(w, "-- %s: %s\n", FieldGenerated, g.Now().Format(timeFormat))
		fmt.Fprintf(w, "-- %s: %s\n", FieldBackupOf, opts.BackupOf)
		fmt.Fprintf(w, "-- %s: %s\n\n", FieldTargetURL, opts.SiteURL)
		return
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	fmt.Fprintf(w, "-- %s Database Export\n", name)
	fmt.Fprintf(w, "-- %s: %s\n", FieldGenerated, g.Now().Format(timeFormat))
	fmt.Fprintf(w, "-- %s: %s\n", FieldSourceURL, opts.SiteURL)
	fmt.Fprintf(w, "-- %s: %s\n\n", FieldExportedTables, strings.Join(names, ", "))
}

func (g *Generator) writeTable(ctx context.Context, w *bufio.Writer, t *schema.Table) (int64, error) {
	d := g.Source.Dialect

	ddl, err := g.Source.ShowCreateTable(ctx, t.Physical)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(w, "\n-- Table structure for %s\n", t.Name)
	fmt.Fprintf(w, "DROP TABLE IF EXISTS %s;\n", d.QuoteIdent(t.Physical))
	fmt.Fprintf(w, "%s;\n\n", strings.TrimRight(strings.TrimSpace(ddl), ";"))
	fmt.Fprintf(w, "-- Data for %s\n", t.Name)

	var (
		rows       int64
		insertHead string
	)
	err = g.Source.SelectAll(ctx, t.Physical, func(cols []string, literals []string) error {
		if insertHead == "" {
			insertHead = fmt.Sprintf("INSERT INTO %s (%s) VALUES (", d.QuoteIdent(t.Physical), dialect.QuoteIdentList(d, cols))
		}
		w.WriteString(insertHead)
		w.WriteString(strings.Join(literals, ", "))
		w.WriteString(");\n")
		rows++
		return nil
	})
	if err != nil {
		return rows, err
	}

	if rows == 0 {
		w.WriteString("-- No data found\n\n")
		return 0, nil
	}
	w.WriteString("\n")
	return rows, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
