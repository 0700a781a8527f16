// Package recordid parses and compares the three part record identifiers
// (category/year/sequence) used by records management exports.
package recordid

import (
	"fmt"
	"strconv"
	"strings"

	"trimveo/internal/failure"
	"trimveo/internal/textutil"
)

// ID is a parsed record identifier. The zero value is not a valid identifier.
type ID struct {
	Category string
	Year     string
	Sequence int
}

// ParseError reports an identifier that could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("identifier %q: %s", e.Input, e.Reason)
}

// Is matches failure.ErrIdentifier.
func (e *ParseError) Is(target error) bool {
	return target == failure.ErrIdentifier
}

// Parse reads a slash separated identifier with exactly three segments. A four
// digit year is reduced to its last two digits.
func Parse(value string) (ID, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return ID{}, &ParseError{Input: value, Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	category := parts[0]
	if category == "" {
		return ID{}, &ParseError{Input: value, Reason: "category must not be empty"}
	}
	if textutil.SanitizeFileName(category) != category {
		return ID{}, &ParseError{Input: value, Reason: "category contains characters unsafe in file names"}
	}

	year := parts[1]
	if len(year) != 2 && len(year) != 4 {
		return ID{}, &ParseError{Input: value, Reason: "year must be 2 or 4 digits"}
	}
	if !isDigits(year) {
		return ID{}, &ParseError{Input: value, Reason: "year must be numeric"}
	}
	year = year[len(year)-2:]

	if !isDigits(parts[2]) {
		return ID{}, &ParseError{Input: value, Reason: "sequence must be numeric"}
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return ID{}, &ParseError{Input: value, Reason: "sequence out of range"}
	}

	return ID{Category: category, Year: year, Sequence: seq}, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(value string) ID {
	id, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders the canonical form category/YY/sequence.
func (id ID) String() string {
	return id.Category + "/" + id.Year + "/" + strconv.Itoa(id.Sequence)
}

// Equal reports structural equality.
func (id ID) Equal(other ID) bool {
	return id == other
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// PackageName renders the identifier in a form usable as a file name. Parse
// rejects categories with unsafe characters, so only slashes need replacing.
func (id ID) PackageName() string {
	return strings.ReplaceAll(id.String(), "/", "-")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
