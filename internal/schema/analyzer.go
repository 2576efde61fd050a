package schema

import (
	"context"
	"fmt"
	"strings"

	"db-sync/internal/source"
)

// DisplayName strips prefix from a physical table name.
func DisplayName(prefix, physical string) string {
	if prefix == "" {
		return physical
	}
	if name, ok := strings.CutPrefix(physical, prefix); ok && name != "" {
		return name
	}
	return physical
}

// Analyze lists the tables of src and builds a catalog for them.
func Analyze(ctx context.Context, src *source.Source, prefix string) (*Catalog, error) {
	physical, err := src.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	src.Logger.Debug("analyzed schema", "tables", len(physical), "prefix", prefix)
	return NewCatalog(prefix, physical), nil
}

// CountRows fills in the row count of every table in the catalog.
func (c *Catalog) CountRows(ctx context.Context, src *source.Source) error {
	for _, t := range c.Tables {
		n, err := src.CountRows(ctx, t.Physical)
		if err != nil {
			return fmt.Errorf("failed to count table %s: %w", t.Name, err)
		}
		t.Rows = n
	}
	return nil
}
