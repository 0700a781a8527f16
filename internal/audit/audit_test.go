package audit_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/audit"
	"trimveo/internal/recordid"
	"trimveo/internal/records"
)

func sample() []*records.Record {
	root := &records.Record{
		ID: recordid.MustParse("AB/21/1"), RawID: "AB/2021/1", Title: "Budget",
		DateCreated: "20210304", DateRegistered: "20210305", Classification: "ADMIN",
		RecordType: "Cabinet File", Defined: true, Root: true, Referenced: true,
		State: records.StateExported, Source: "a.txt",
	}
	child := &records.Record{
		ID: recordid.MustParse("AB/21/2"), RawID: "AB/2021/2", Title: "Minutes",
		Container: recordid.MustParse("AB/21/1"), Defined: true,
		State: records.StateExported, Source: "a.txt",
	}
	failed := &records.Record{
		ID: recordid.MustParse("AB/21/3"), RawID: "AB/21/3", Title: "Broken",
		Defined: true, Root: true, State: records.StateFailed, Source: "a.txt",
	}
	stub := records.NewStub(recordid.MustParse("ZZ/21/9"), "a.txt")
	stub.Referenced = true
	stub.AddReferencedBy("AB/21/4")
	return []*records.Record{root, child, failed, stub}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasSuffix(text, "\r\n"))
	return strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	paths, err := audit.WriteReports(dir, sample())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	header := "ID\tVEO Name\tContainer\tTitle\tDate Created\tDate Registered\tClassification\tRecord Type"

	exported := readLines(t, filepath.Join(dir, audit.ExportedReport))
	assert.Equal(t, []string{
		header,
		"AB/21/1\tAB/2021/1\t\tBudget\t20210304\t20210305\tADMIN\tCabinet File",
		"AB/21/2\tAB/2021/2\tAB/21/1\tMinutes\t\t\t\t",
	}, exported)

	all := readLines(t, filepath.Join(dir, audit.AllEntities))
	require.Len(t, all, 5)
	assert.True(t, strings.HasPrefix(all[4], "ZZ/21/9\t\t"))

	files := readLines(t, filepath.Join(dir, audit.AllFiles))
	assert.Equal(t, []string{header, exported[1]}, files)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	audit.RenderSummary(&buf, audit.Summary{
		RunID:         "run-1",
		Started:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		User:          "tester",
		Inputs:        []string{"a.txt"},
		HashAlgorithm: "SHA-512",
		Files:         1,
		Rows:          1234,
		Exported:      1,
		ContentBytes:  2048,
		Cycles:        [][]string{{"CD/21/1", "CD/21/2"}},
	}, sample())

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "ZZ/21/9")
	assert.Contains(t, out, "AB/21/4")
	assert.Contains(t, out, "CD/21/1 -> CD/21/2")
	assert.Contains(t, out, "AB-21-1")
	assert.NotContains(t, out, "AB-21-3")
}

func TestUndefinedAndUnattached(t *testing.T) {
	recs := sample()
	undefined := audit.Undefined(recs)
	require.Len(t, undefined, 1)
	assert.Equal(t, "ZZ/21/9", undefined[0].Key())
	assert.Equal(t, 1, audit.Unattached(recs))
}
