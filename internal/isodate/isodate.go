// Package isodate converts the compact yyyy[mm[dd[hh[mm[ss]]]]] timestamps
// found in records exports into ISO 8601 text at the precision supplied.
package isodate

import (
	"fmt"

	"trimveo/internal/failure"
)

// FormatError reports a value that is not a supported compact timestamp.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("date %q is not in yyyy[mm[dd[hh[mm[ss]]]]] form", e.Value)
}

// Is matches failure.ErrDateFormat.
func (e *FormatError) Is(target error) bool {
	return target == failure.ErrDateFormat
}

// Normalize formats value according to its length. Lengths 4, 6, 8, 10 and 12
// are accepted as is; 14 or more uses the first 14 digits. Hours without
// minutes render as hh:00.
func Normalize(value string) (string, error) {
	n := len(value)
	if n >= 14 {
		n = 14
	}
	switch n {
	case 4, 6, 8, 10, 12, 14:
	default:
		return "", &FormatError{Value: value}
	}
	digits := value[:n]
	for i := 0; i < n; i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", &FormatError{Value: value}
		}
	}

	out := digits[0:4]
	if n >= 6 {
		out += "-" + digits[4:6]
	}
	if n >= 8 {
		out += "-" + digits[6:8]
	}
	switch {
	case n == 10:
		out += "T" + digits[8:10] + ":00"
	case n >= 12:
		out += "T" + digits[8:10] + ":" + digits[10:12]
	}
	if n == 14 {
		out += ":" + digits[12:14]
	}
	return out, nil
}
