package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/config"
	"trimveo/internal/export"
	"trimveo/internal/failure"
	"trimveo/internal/logging"
	"trimveo/internal/records"
	"trimveo/internal/testsupport"
)

func TestReadFileDecodesUTF16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	testsupport.WriteExport(t, path, testsupport.StandardHeader,
		testsupport.Row("AB/2021/1", "Café budget", "", "20210304", "CABINET FILE", "a.pdf"),
		[]string{},
		testsupport.Row("AB/2021/2", "Minute", "AB/2021/1", "20210305", "", ""),
	)

	file, err := export.ReadFile(path, config.EncodingUTF16)
	require.NoError(t, err)
	assert.Equal(t, testsupport.StandardHeader, file.Header)
	require.Len(t, file.Rows, 2)
	assert.Equal(t, 2, file.Rows[0].Line)
	assert.Equal(t, "Café budget", file.Rows[0].Cells[1])
	assert.Equal(t, 4, file.Rows[1].Line)
	assert.Equal(t, "AB/2021/1", file.Rows[1].Cells[2])
}

func TestReadUTF8(t *testing.T) {
	input := "\ufeff" + strings.Join(testsupport.StandardHeader, "\t") + "\n" +
		strings.Join(testsupport.Row("AB/21/1", "t", "", "2021", "", ""), "\t") + "\n"
	file, err := export.Read(strings.NewReader(input), config.EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, "Expanded Number", file.Header[0])
	require.Len(t, file.Rows, 1)
}

func TestReadRejectsEmptyInput(t *testing.T) {
	_, err := export.Read(strings.NewReader("\n\n"), config.EncodingUTF8)
	require.Error(t, err)
}

func TestLoaderSkipsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	testsupport.WriteExport(t, path, testsupport.StandardHeader,
		testsupport.Row("AB/2021/1", "root", "", "2021", "", ""),
		testsupport.Row("AB/2021", "bad id", "", "2021", "", ""),
		testsupport.Row("AB/2021/3", "bad container", "AB/20/x", "2021", "", ""),
	)

	loader := &export.Loader{Encoding: config.EncodingUTF16, Policy: records.LastWriteWins, Logger: logging.NewNop()}
	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Table.Len())
	require.Len(t, result.Rejected, 2)
	for _, rejected := range result.Rejected {
		assert.True(t, errors.Is(rejected, failure.ErrIdentifier))
	}
}

func TestLoaderFailsFileOnMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	header := append([]string(nil), testsupport.StandardHeader[:8]...)
	testsupport.WriteExport(t, path, header, []string{"AB/21/1"})

	loader := &export.Loader{Encoding: config.EncodingUTF16, Logger: logging.NewNop()}
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrSchema))
	assert.Equal(t, failure.ScopeFile, failure.ScopeOf(err))
	assert.Contains(t, err.Error(), "retentionSchedule")
}

func TestDiscoverWalksDirectories(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteText(t, filepath.Join(base, "b.txt"), "x")
	testsupport.WriteText(t, filepath.Join(base, "nested", "a.TSV"), "x")
	testsupport.WriteText(t, filepath.Join(base, "nested", "doc.pdf"), "x")
	testsupport.WriteText(t, filepath.Join(base, "old.veo", "inner.txt"), "x")
	explicit := filepath.Join(base, "nested", "doc.pdf")

	files, err := export.Discover([]string{base, explicit, filepath.Join(base, "b.txt")}, []string{".txt", ".tsv"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(base, "b.txt"),
		filepath.Join(base, "nested", "a.TSV"),
		explicit,
	}, files)
}

func TestDiscoverMissingInput(t *testing.T) {
	_, err := export.Discover([]string{filepath.Join(t.TempDir(), "missing")}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
