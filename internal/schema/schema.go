// Package schema binds the header row of a records export to the semantic
// roles the converter understands.
package schema

import (
	"fmt"
	"strings"

	"trimveo/internal/failure"
)

// Role names a semantic column.
type Role string

const (
	RoleID                Role = "id"
	RoleContainer         Role = "container"
	RoleTitle             Role = "title"
	RoleClassification    Role = "classification"
	RoleDateCreated       Role = "dateCreated"
	RoleDateRegistered    Role = "dateRegistered"
	RoleRecordType        Role = "recordType"
	RoleContentFile       Role = "contentFile"
	RoleRetentionSchedule Role = "retentionSchedule"
	RoleContainedRecords  Role = "containedRecords"
	RoleIsPart            Role = "isPart"
)

// RequiredRoles lists the roles every export must carry, in the order
// missing roles are reported.
var RequiredRoles = []Role{
	RoleID,
	RoleContainer,
	RoleTitle,
	RoleClassification,
	RoleDateCreated,
	RoleDateRegistered,
	RoleRecordType,
	RoleContentFile,
	RoleRetentionSchedule,
}

// OptionalRoles are bound when present.
var OptionalRoles = []Role{RoleContainedRecords, RoleIsPart}

var labels = map[Role][]string{
	RoleID:                {"Expanded Number"},
	RoleContainer:         {"Folder", "Container"},
	RoleTitle:             {"Title (Free Text Part)"},
	RoleClassification:    {"Classification"},
	RoleDateCreated:       {"Date Created"},
	RoleDateRegistered:    {"Date Registered"},
	RoleRecordType:        {"Record Type"},
	RoleContentFile:       {"DOS file"},
	RoleRetentionSchedule: {"Retention schedule"},
	RoleContainedRecords:  {"*Contained Records*"},
	RoleIsPart:            {"*Is Part*"},
}

// Labels returns the header labels accepted for role.
func Labels(role Role) []string {
	out := make([]string, len(labels[role]))
	copy(out, labels[role])
	return out
}

// MissingRoleError names the first required role absent from a header.
type MissingRoleError struct {
	Role   Role
	Labels []string
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("header has no column for role %s (expected one of %q)", e.Role, e.Labels)
}

// Is matches failure.ErrSchema.
func (e *MissingRoleError) Is(target error) bool {
	return target == failure.ErrSchema
}

// Binding maps roles to column positions for one export file.
type Binding struct {
	header  []string
	columns map[Role]int
}

// Bind matches header labels exactly (case sensitive, surrounding whitespace
// ignored). When a label appears more than once the first column wins.
func Bind(header []string) (*Binding, error) {
	cleaned := make([]string, len(header))
	for i, label := range header {
		cleaned[i] = strings.TrimSpace(strings.TrimPrefix(label, "\ufeff"))
	}

	positions := make(map[string]int, len(cleaned))
	for i, label := range cleaned {
		if _, seen := positions[label]; !seen {
			positions[label] = i
		}
	}

	b := &Binding{header: cleaned, columns: make(map[Role]int)}
	for _, role := range RequiredRoles {
		idx, ok := lookup(positions, role)
		if !ok {
			return nil, &MissingRoleError{Role: role, Labels: Labels(role)}
		}
		b.columns[role] = idx
	}
	for _, role := range OptionalRoles {
		if idx, ok := lookup(positions, role); ok {
			b.columns[role] = idx
		}
	}
	return b, nil
}

func lookup(positions map[string]int, role Role) (int, bool) {
	for _, label := range labels[role] {
		if idx, ok := positions[label]; ok {
			return idx, true
		}
	}
	return 0, false
}

// Index returns the column bound to role.
func (b *Binding) Index(role Role) (int, bool) {
	idx, ok := b.columns[role]
	return idx, ok
}

// Has reports whether role is bound.
func (b *Binding) Has(role Role) bool {
	_, ok := b.columns[role]
	return ok
}

// Value returns the trimmed cell for role, or "" when the role is unbound or
// the row is short.
func (b *Binding) Value(row []string, role Role) string {
	idx, ok := b.columns[role]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Header returns the cleaned header labels.
func (b *Binding) Header() []string {
	out := make([]string, len(b.header))
	copy(out, b.header)
	return out
}

// Width is the number of header columns.
func (b *Binding) Width() int {
	return len(b.header)
}
