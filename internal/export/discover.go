package export

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Discover expands inputs into export files. Files named explicitly are kept
// as given; directories are walked recursively and contribute the files whose
// lower-cased extension is in extensions. The result is de-duplicated and
// each directory's contribution is sorted.
func Discover(inputs []string, extensions []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", input, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", input, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		var found []string
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != abs && strings.HasSuffix(d.Name(), ".veo") {
					return filepath.SkipDir
				}
				return nil
			}
			if slices.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", input, err)
		}
		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}
	return out, nil
}
