package records

import (
	"sort"

	"trimveo/internal/recordid"
)

// State tracks a record through package emission.
type State int

const (
	StateUnvisited State = iota
	StateEmitting
	StateExported
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmitting:
		return "emitting"
	case StateExported:
		return "exported"
	case StateFailed:
		return "failed"
	default:
		return "unvisited"
	}
}

// ParseState maps the String form of a State back to the State. Unknown
// values read as StateUnvisited.
func ParseState(value string) State {
	switch value {
	case "emitting":
		return StateEmitting
	case "exported":
		return StateExported
	case "failed":
		return StateFailed
	default:
		return StateUnvisited
	}
}

// Record is one row of an export, or a stub standing in for a container that
// was referenced but never defined.
type Record struct {
	ID recordid.ID
	// RawID is the identifier cell exactly as exported.
	RawID string
	// Fields holds the row cells aligned with the bound header.
	Fields []string
	// Container is the zero ID for a root.
	Container recordid.ID

	Title             string
	DateCreated       string
	DateRegistered    string
	Classification    string
	RetentionSchedule string
	ContentFile       string
	RecordTypeRaw     string
	RecordType        string
	ContainedRecords  string
	IsPart            string

	// Source is the export file the record was last read from.
	Source string
	// Line is the 1-based line of the row that last defined the record.
	Line int

	Root       bool
	Referenced bool
	Defined    bool
	State      State

	referencedBy map[string]struct{}
}

// NewStub creates the placeholder for an undefined container. RawID stays
// empty since no row supplied one.
func NewStub(id recordid.ID, source string) *Record {
	return &Record{ID: id, Source: source}
}

// Key is the canonical identifier used as the table key.
func (r *Record) Key() string {
	return r.ID.String()
}

// HasContainer reports whether the record points at a parent.
func (r *Record) HasContainer() bool {
	return !r.Container.IsZero()
}

// ContainerKey returns the canonical container identifier, or "" for a root.
func (r *Record) ContainerKey() string {
	if !r.HasContainer() {
		return ""
	}
	return r.Container.String()
}

// Exported reports whether the record was sealed into a package.
func (r *Record) Exported() bool {
	return r.State == StateExported
}

// AddReferencedBy records that the record identified by key names r as its
// container.
func (r *Record) AddReferencedBy(key string) {
	if r.referencedBy == nil {
		r.referencedBy = make(map[string]struct{})
	}
	r.referencedBy[key] = struct{}{}
}

// ReferencedBy returns the referencing identifiers in sorted order.
func (r *Record) ReferencedBy() []string {
	out := make([]string, 0, len(r.referencedBy))
	for key := range r.referencedBy {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// overwrite copies the row-derived fields of src into r, keeping r's
// reference bookkeeping.
func (r *Record) overwrite(src *Record) {
	refs := r.referencedBy
	referenced := r.Referenced
	*r = *src
	r.referencedBy = refs
	r.Referenced = referenced || src.Referenced
	for key := range src.referencedBy {
		r.AddReferencedBy(key)
	}
}
