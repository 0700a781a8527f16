package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

// StandardHeader is the column layout of a typical records export.
var StandardHeader = []string{
	"Expanded Number",
	"Title (Free Text Part)",
	"Folder",
	"Classification",
	"Date Created",
	"Date Registered",
	"Record Type",
	"DOS file",
	"Retention schedule",
}

// Row builds a StandardHeader row.
func Row(id, title, container, created, recordType, dosFile string) []string {
	return []string{id, title, container, "ADMIN", created, created, recordType, dosFile, "PERMANENT"}
}

// WriteExport writes header and rows as a tab separated, UTF-16LE export with
// a byte order mark and CRLF line endings.
func WriteExport(t testing.TB, path string, header []string, rows ...[]string) {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteString("\r\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\r\n")
	}

	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(b.String())
	if err != nil {
		t.Fatalf("encode export: %v", err)
	}
	writeBytes(t, path, []byte(encoded))
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	writeBytes(t, path, []byte(content))
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}
