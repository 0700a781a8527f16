// Package ltsf holds the allow-list of long-term sustainable file formats.
//
// Content whose extension is not on the list is still packaged, but the
// converter attaches an explanatory placeholder next to it.
package ltsf

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Validator answers whether a file extension is an approved format.
type Validator struct {
	extensions map[string]struct{}
}

// New builds a validator from extensions such as ".pdf" or "PDF".
func New(extensions ...string) *Validator {
	v := &Validator{extensions: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		if ext = normalize(ext); ext != "" {
			v.extensions[ext] = struct{}{}
		}
	}
	return v
}

// Load reads a validLTSF.txt list: one extension per line, first field only.
// Blank lines and lines starting with ! or # are ignored.
func Load(path string) (*Validator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open format list: %w", err)
	}
	defer f.Close()

	var exts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "#") {
			continue
		}
		exts = append(exts, strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read format list %s: %w", path, err)
	}
	v := New(exts...)
	if v.Len() == 0 {
		return nil, fmt.Errorf("format list %s lists no extensions", path)
	}
	return v, nil
}

// IsApproved reports whether ext (with or without the leading dot, any case)
// is on the list.
func (v *Validator) IsApproved(ext string) bool {
	_, ok := v.extensions[normalize(ext)]
	return ok
}

// Len returns the number of approved extensions.
func (v *Validator) Len() int {
	return len(v.extensions)
}

// Extensions returns the approved extensions in sorted order.
func (v *Validator) Extensions() []string {
	out := make([]string, 0, len(v.extensions))
	for ext := range v.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
