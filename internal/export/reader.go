package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"trimveo/internal/config"
)

const maxLineBytes = 4 * 1024 * 1024

// Row is one data line of an export.
type Row struct {
	Line  int
	Cells []string
}

// File is the decoded content of an export file.
type File struct {
	Path   string
	Header []string
	Rows   []Row
}

func decoderFor(name string) (encoding.Encoding, error) {
	switch name {
	case config.EncodingUTF16, "":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case config.EncodingUTF8:
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported export encoding %q", name)
	}
}

// ReadFile decodes the export at path.
func ReadFile(path, encodingName string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	file, err := Read(f, encodingName)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", path, err)
	}
	file.Path = path
	return file, nil
}

// Read decodes an export from r. Empty lines are skipped and trailing carriage
// returns removed; line numbers count every physical line.
func Read(r io.Reader, encodingName string) (*File, error) {
	enc, err := decoderFor(encodingName)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	file := &File{}
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		cells := strings.Split(text, "\t")
		if file.Header == nil {
			file.Header = cells
			continue
		}
		file.Rows = append(file.Rows, Row{Line: line, Cells: cells})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if file.Header == nil {
		return nil, fmt.Errorf("export is empty")
	}
	return file, nil
}
