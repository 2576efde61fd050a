package schema

// Table maps a display name (table prefix stripped) to its physical name.
type Table struct {
	Name     string // display name, e.g. "posts"
	Physical string // physical name, e.g. "wp_posts"
	Rows     int64  // -1 until counted
}

// Catalog is the set of tables a data source currently holds.
type Catalog struct {
	Prefix string
	Tables []*Table

	byName     map[string]*Table
	byPhysical map[string]*Table
}

// NewCatalog builds a catalog from physical table names, keeping their order.
func NewCatalog(prefix string, physical []string) *Catalog {
	c := &Catalog{
		Prefix:     prefix,
		byName:     make(map[string]*Table, len(physical)),
		byPhysical: make(map[string]*Table, len(physical)),
	}
	for _, p := range physical {
		t := &Table{Name: DisplayName(prefix, p), Physical: p, Rows: -1}
		c.Tables = append(c.Tables, t)
		c.byName[t.Name] = t
		c.byPhysical[p] = t
	}
	return c
}

// Lookup finds a table by display name, falling back to its physical name.
func (c *Catalog) Lookup(name string) (*Table, bool) {
	if t, ok := c.byName[name]; ok {
		return t, true
	}
	t, ok := c.byPhysical[name]
	return t, ok
}

// Resolve maps display names to tables in the given order. Names that do not
// exist are returned in missing and skipped.
func (c *Catalog) Resolve(names []string) (found []*Table, missing []string) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		t, ok := c.Lookup(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		if seen[t.Physical] {
			continue
		}
		seen[t.Physical] = true
		found = append(found, t)
	}
	return found, missing
}

// Label returns the display name for a physical table, or the physical name
// itself if the table is not in the catalog.
func (c *Catalog) Label(physical string) string {
	if t, ok := c.byPhysical[physical]; ok {
		return t.Name
	}
	return physical
}
