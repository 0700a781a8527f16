package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema        = errors.New("schema error")
	ErrIdentifier    = errors.New("identifier parse error")
	ErrDateFormat    = errors.New("date format error")
	ErrContentAttach = errors.New("content attach error")
	ErrCycle         = errors.New("cycle detected")
	ErrFinalize      = errors.New("package finalize error")
	ErrConfiguration = errors.New("configuration error")
	ErrDuplicate     = errors.New("duplicate record")
)

// Scope describes the unit of work an error invalidates.
type Scope string

const (
	ScopeRow     Scope = "row"
	ScopeFile    Scope = "file"
	ScopeRoot    Scope = "root"
	ScopeProcess Scope = "process"
)

// Wrap builds an error message that includes the scope and operation while
// tagging it with the provided marker for later classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, scope, operation, message string, err error) error {
	detail := buildDetail(scope, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ScopeOf maps an error to the unit of work the runner should abandon.
// Unknown errors are treated as process scoped.
func ScopeOf(err error) Scope {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIdentifier), errors.Is(err, ErrDuplicate):
		return ScopeRow
	case errors.Is(err, ErrSchema):
		return ScopeFile
	case errors.Is(err, ErrDateFormat), errors.Is(err, ErrContentAttach),
		errors.Is(err, ErrCycle), errors.Is(err, ErrFinalize):
		return ScopeRoot
	default:
		return ScopeProcess
	}
}

func buildDetail(scope, operation, message string) string {
	parts := make([]string, 0, 3)
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
