package records

import (
	"sort"

	"trimveo/internal/recordid"
	"trimveo/internal/schema"
)

// Table holds the records read from one export file, keyed by canonical
// identifier. Iteration is always in identifier-string order.
type Table struct {
	Source  string
	Binding *schema.Binding

	records  map[string]*Record
	keys     []string
	sorted   bool
	children map[string][]*Record
}

// NewTable creates an empty table for the export at source.
func NewTable(source string, binding *schema.Binding) *Table {
	return &Table{
		Source:  source,
		Binding: binding,
		records: make(map[string]*Record),
		sorted:  true,
	}
}

// Len returns the number of records, stubs included.
func (t *Table) Len() int {
	return len(t.records)
}

// Get returns the record stored under key.
func (t *Table) Get(key string) (*Record, bool) {
	r, ok := t.records[key]
	return r, ok
}

// Lookup returns the record for id.
func (t *Table) Lookup(id recordid.ID) (*Record, bool) {
	return t.Get(id.String())
}

// Put stores r. When a record with the same key exists its fields are
// overwritten in place, keeping the referencing bookkeeping, and the stored
// record is returned.
func (t *Table) Put(r *Record) *Record {
	key := r.Key()
	if existing, ok := t.records[key]; ok {
		existing.overwrite(r)
		t.children = nil
		return existing
	}
	t.records[key] = r
	t.keys = append(t.keys, key)
	t.sorted = false
	t.children = nil
	return r
}

// Keys returns the identifiers in sorted order.
func (t *Table) Keys() []string {
	if !t.sorted {
		sort.Strings(t.keys)
		t.sorted = true
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Records returns every record in identifier order.
func (t *Table) Records() []*Record {
	keys := t.Keys()
	out := make([]*Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, t.records[key])
	}
	return out
}

// Roots returns the defined records without a container, in identifier order.
func (t *Table) Roots() []*Record {
	var out []*Record
	for _, r := range t.Records() {
		if r.Defined && !r.HasContainer() {
			out = append(out, r)
		}
	}
	return out
}

// Children returns the defined records whose container is id, in identifier
// order. The container index is built on first use after a mutation.
func (t *Table) Children(id recordid.ID) []*Record {
	if t.children == nil {
		t.BuildIndex()
	}
	return t.children[id.String()]
}

// BuildIndex builds the container to children index.
func (t *Table) BuildIndex() {
	index := make(map[string][]*Record)
	for _, r := range t.Records() {
		if !r.Defined || !r.HasContainer() {
			continue
		}
		parent := r.ContainerKey()
		index[parent] = append(index[parent], r)
	}
	t.children = index
}
