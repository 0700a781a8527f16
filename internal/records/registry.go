package records

import "sort"

// Registry accumulates records from every table processed in a run. Entries
// are never removed.
type Registry struct {
	records map[string]*Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Merge adds every record of table. Only a defined record replaces a stored
// entry, inheriting its referrers; an incoming stub just adds its referrers
// to what is stored.
func (g *Registry) Merge(table *Table) {
	for _, rec := range table.Records() {
		g.Add(rec)
	}
}

// Add merges a single record using the same rule as Merge.
func (g *Registry) Add(rec *Record) {
	key := rec.Key()
	existing, ok := g.records[key]
	if !ok {
		g.records[key] = rec
		return
	}
	if existing == rec {
		return
	}
	if !rec.Defined {
		existing.Referenced = existing.Referenced || rec.Referenced
		for _, ref := range rec.ReferencedBy() {
			existing.AddReferencedBy(ref)
		}
		return
	}
	rec.Referenced = rec.Referenced || existing.Referenced
	for _, ref := range existing.ReferencedBy() {
		rec.AddReferencedBy(ref)
	}
	g.records[key] = rec
}

// Get returns the record stored under key.
func (g *Registry) Get(key string) (*Record, bool) {
	r, ok := g.records[key]
	return r, ok
}

// Len returns the number of entries.
func (g *Registry) Len() int {
	return len(g.records)
}

// Records returns every entry in identifier order.
func (g *Registry) Records() []*Record {
	keys := make([]string, 0, len(g.records))
	for key := range g.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, g.records[key])
	}
	return out
}
