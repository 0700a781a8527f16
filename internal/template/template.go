// Package template loads the text fragments merged into generated metadata.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// AGLSCommonFile is merged verbatim into every AGLS metadata block.
	AGLSCommonFile = "aglsCommon.txt"
	// PlaceholderFile optionally replaces the default placeholder text.
	PlaceholderFile = "noLTSFExpln.txt"

	// DefaultPlaceholder is written into the placeholder content file attached
	// next to content in an unapproved format.
	DefaultPlaceholder = "This Information Piece has no content in an approved long term preservation format\n"
)

// Set holds the loaded fragments.
type Set struct {
	AGLSCommon  string
	Placeholder string
}

// Default returns an empty AGLS fragment and the default placeholder text.
func Default() *Set {
	return &Set{Placeholder: DefaultPlaceholder}
}

// Load reads the fragments in dir. An empty dir yields Default. When dir is
// set, aglsCommon.txt must exist; noLTSFExpln.txt is optional.
func Load(dir string) (*Set, error) {
	set := Default()
	if dir == "" {
		return set, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, AGLSCommonFile))
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", AGLSCommonFile, err)
	}
	set.AGLSCommon = string(data)

	data, err = os.ReadFile(filepath.Join(dir, PlaceholderFile))
	switch {
	case err == nil:
		set.Placeholder = string(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("load template %s: %w", PlaceholderFile, err)
	}
	return set, nil
}
