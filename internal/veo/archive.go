package veo

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// zipDirectory writes every file below dir into dest with entry names
// prefixed by root. filepath.WalkDir visits entries in lexical order, so the
// archive layout is stable between runs.
func zipDirectory(dir, root, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := path.Join(root, filepath.ToSlash(rel))
		if d.IsDir() {
			if rel == "." {
				name = root
			}
			_, err := zw.Create(name + "/")
			return err
		}
		return addZipFile(zw, p, name)
	})

	closeErr := zw.Close()
	fileErr := out.Close()
	switch {
	case walkErr != nil:
		return walkErr
	case closeErr != nil:
		return closeErr
	default:
		return fileErr
	}
}

func addZipFile(zw *zip.Writer, src, name string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}
