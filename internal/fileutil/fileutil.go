// Package fileutil copies files into package directories.
package fileutil

import (
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	_, err := CopyFileHashed(src, dst, nil)
	return err
}

// CopyFileHashed streams src to dst, creating dst's parent directories, and
// feeds every byte read to h when h is non-nil. It returns the number of
// bytes copied. dst is removed when the copy is short.
func CopyFileHashed(src, dst string, h hash.Hash) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return 0, fmt.Errorf("source %s is a directory", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	var reader io.Reader = in
	if h != nil {
		reader = io.TeeReader(in, h)
	}
	written, err := io.Copy(out, reader)
	if err != nil {
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return written, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	return written, nil
}
