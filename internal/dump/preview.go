package dump

import (
	"db-sync/internal/splitter"
)

// TableCount is the number of INSERT statements a dump holds for one table.
type TableCount struct {
	Table string
	Rows  int
}

// Preview describes what importing a dump would do, without executing it.
type Preview struct {
	Title     string
	SourceURL string
	TargetURL string
	Tables    []TableCount
	TotalRows int
}

// NeedsRewrite reports whether an import would rewrite the site URL.
func (p *Preview) NeedsRewrite() bool {
	return p.SourceURL != "" && p.TargetURL != "" && p.SourceURL != p.TargetURL
}

// BuildPreview counts tables and rows of a dump in statement order.
func BuildPreview(text, targetURL string) *Preview {
	h := ReadHeader(text)
	p := &Preview{
		Title:     h.Title,
		SourceURL: h.Get(FieldSourceURL),
		TargetURL: targetURL,
	}

	index := make(map[string]int)
	slot := func(table string) int {
		i, ok := index[table]
		if !ok {
			i = len(p.Tables)
			index[table] = i
			p.Tables = append(p.Tables, TableCount{Table: table})
		}
		return i
	}

	for stmt := range splitter.Statements(text) {
		if name, ok := CreateTableName(stmt); ok {
			slot(name)
			continue
		}
		if name, ok := InsertTableName(stmt); ok {
			p.Tables[slot(name)].Rows++
			p.TotalRows++
		}
	}
	return p
}
