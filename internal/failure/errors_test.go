package failure_test

import (
	"errors"
	"strings"
	"testing"

	"trimveo/internal/failure"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failure.Wrap(failure.ErrContentAttach, "root AB/21/1", "attach", "copy failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, failure.ErrContentAttach) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"root AB/21/1", "attach", "copy failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := failure.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("expected configuration marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "conversion failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestScopeOf(t *testing.T) {
	cases := []struct {
		err  error
		want failure.Scope
	}{
		{nil, ""},
		{failure.Wrap(failure.ErrIdentifier, "row 3", "parse", "bad id", nil), failure.ScopeRow},
		{failure.Wrap(failure.ErrDuplicate, "row 4", "store", "", nil), failure.ScopeRow},
		{failure.Wrap(failure.ErrSchema, "export.txt", "bind", "", nil), failure.ScopeFile},
		{failure.Wrap(failure.ErrDateFormat, "", "", "", nil), failure.ScopeRoot},
		{failure.Wrap(failure.ErrCycle, "", "", "", nil), failure.ScopeRoot},
		{failure.Wrap(failure.ErrFinalize, "", "", "", nil), failure.ScopeRoot},
		{errors.New("disk on fire"), failure.ScopeProcess},
	}
	for _, tc := range cases {
		if got := failure.ScopeOf(tc.err); got != tc.want {
			t.Fatalf("ScopeOf(%v): got %q want %q", tc.err, got, tc.want)
		}
	}
}
