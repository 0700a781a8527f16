// Package staging manages package artifacts in the output directory: it
// clears the previous artifacts of a package before it is rebuilt, removes
// directories abandoned by interrupted runs, and lists what a run produced.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trimveo/internal/logging"
)

const (
	// DirSuffix marks an unpacked package directory.
	DirSuffix = ".veo"
	// ZipSuffix marks a sealed package archive.
	ZipSuffix = ".veo.zip"
)

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// RemovePackage deletes the directory and archive previously produced for
// package name. Missing artifacts are not an error.
func RemovePackage(outputDir, name string, logger *slog.Logger) error {
	for _, path := range []string{
		filepath.Join(outputDir, name+DirSuffix),
		filepath.Join(outputDir, name+ZipSuffix),
	} {
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove previous package %s: %w", path, err)
		}
		if logger != nil {
			logger.Debug("removed previous package artifact",
				logging.String("path", path),
				logging.String(logging.FieldEventType, "package_replaced"),
			)
		}
	}
	return nil
}

// CleanAbandoned removes unpacked package directories older than maxAge that
// have no sealed archive beside them.
func CleanAbandoned(ctx context.Context, outputDir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return result
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: outputDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), DirSuffix) {
			continue
		}

		dirPath := filepath.Join(outputDir, entry.Name())
		zipPath := strings.TrimSuffix(dirPath, DirSuffix) + ZipSuffix
		if _, err := os.Stat(zipPath); err == nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove abandoned package directory", "package_cleanup_failed",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed abandoned package directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "package_cleanup"),
			)
		}
	}

	return result
}

// PackageInfo describes one package artifact in the output directory.
type PackageInfo struct {
	Name    string
	Path    string
	Sealed  bool
	ModTime time.Time
	Size    int64
}

// ListPackages returns the package archives and unpacked package directories
// in outputDir, sorted by name.
func ListPackages(outputDir string) ([]PackageInfo, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var pkgs []PackageInfo
	for _, entry := range entries {
		name := entry.Name()
		var pkg PackageInfo
		switch {
		case !entry.IsDir() && strings.HasSuffix(name, ZipSuffix):
			pkg = PackageInfo{Name: strings.TrimSuffix(name, ZipSuffix), Sealed: true}
		case entry.IsDir() && strings.HasSuffix(name, DirSuffix):
			pkg = PackageInfo{Name: strings.TrimSuffix(name, DirSuffix)}
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		pkg.Path = filepath.Join(outputDir, name)
		pkg.ModTime = info.ModTime()
		if entry.IsDir() {
			pkg.Size, _ = dirSize(pkg.Path)
		} else {
			pkg.Size = info.Size()
		}
		pkgs = append(pkgs, pkg)
	}

	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].Sealed && !pkgs[j].Sealed
	})
	return pkgs, nil
}

// dirSize calculates the total size of a directory recursively.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Ignore errors, best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
