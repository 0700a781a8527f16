package veo_test

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/failure"
	"trimveo/internal/testsupport"
	"trimveo/internal/veo"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]string)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			entries[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = string(data)
	}
	return entries
}

func TestFinalizeWritesSignedArchive(t *testing.T) {
	out := t.TempDir()
	src := filepath.Join(t.TempDir(), "report.pdf")
	testsupport.WriteText(t, src, "pdf bytes")

	b := &veo.Builder{Signer: testsupport.NewRSASigner(t), UserID: "tester", Now: fixedNow}
	pkg, err := b.Open(out, "AB-21-1", "SHA-512")
	require.NoError(t, err)

	require.NoError(t, pkg.AddEvent("Converted to VEO", ""))
	require.NoError(t, pkg.AddInformationObject("Folder", 1))
	require.NoError(t, pkg.AddMetadataPackage("urn:schema", "urn:syntax", "<a>1 &amp; 2</a>"))
	require.NoError(t, pkg.AddInformationPiece(""))
	require.NoError(t, pkg.AddContentFile("AB-21-1/report.pdf", src))
	require.NoError(t, pkg.AddInformationObject("", 2))
	require.NoError(t, pkg.Finalize(true))

	assert.Equal(t, int64(len("pdf bytes")), pkg.ContentBytes())
	assert.Equal(t, 2, pkg.InformationObjects())
	assert.NoDirExists(t, pkg.Dir())

	entries := readZip(t, filepath.Join(out, "AB-21-1.veo.zip"))
	require.Contains(t, entries, "AB-21-1.veo/VEOContent.xml")
	require.Contains(t, entries, "AB-21-1.veo/VEOHistory.xml")
	require.Contains(t, entries, "AB-21-1.veo/VEOContentSignature1.xml")
	require.Contains(t, entries, "AB-21-1.veo/VEOHistorySignature1.xml")
	assert.Equal(t, "pdf bytes", entries["AB-21-1.veo/AB-21-1/report.pdf"])

	content := entries["AB-21-1.veo/VEOContent.xml"]
	assert.Equal(t, 2, strings.Count(content, "<vers:InformationObject>"))
	assert.Contains(t, content, "<vers:InformationObjectType>Folder</vers:InformationObjectType>")
	assert.Contains(t, content, "<vers:InformationObjectDepth>2</vers:InformationObjectDepth>")
	assert.Contains(t, content, "<vers:HashFunctionAlgorithm>SHA-512</vers:HashFunctionAlgorithm>")
	assert.Contains(t, content, "<a>1 &amp; 2</a>")
	assert.Contains(t, content, "<vers:PathName>AB-21-1/report.pdf</vers:PathName>")

	history := entries["AB-21-1.veo/VEOHistory.xml"]
	assert.Contains(t, history, "<vers:EventType>Converted to VEO</vers:EventType>")
	assert.Contains(t, history, "<vers:Initiator>tester</vers:Initiator>")
	assert.Contains(t, history, "2024-03-01T09:30:00+00:00")

	assert.Contains(t, entries["AB-21-1.veo/VEOContentSignature1.xml"], "<vers:SignatureAlgorithm>SHA512withRSA</vers:SignatureAlgorithm>")
}

func TestFinalizeUnsignedKeepsDirectory(t *testing.T) {
	out := t.TempDir()
	b := &veo.Builder{UserID: "tester", KeepDirectory: true}
	pkg, err := b.Open(out, "AB-21-2", "SHA-256")
	require.NoError(t, err)
	require.NoError(t, pkg.AddInformationObject("", 1))
	require.NoError(t, pkg.Finalize(false))

	assert.DirExists(t, pkg.Dir())
	assert.FileExists(t, pkg.ZipPath())
	assert.NoFileExists(t, filepath.Join(pkg.Dir(), veo.ContentSignatureFile))
}

func TestOpenReplacesPreviousArtifacts(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "AB-21-1.veo", "stale.txt")
	testsupport.WriteText(t, stale, "old")
	testsupport.WriteText(t, filepath.Join(out, "AB-21-1.veo.zip"), "old zip")

	b := &veo.Builder{}
	pkg, err := b.Open(out, "AB-21-1", "SHA-512")
	require.NoError(t, err)
	defer pkg.Abandon()

	assert.NoFileExists(t, stale)
	assert.NoFileExists(t, filepath.Join(out, "AB-21-1.veo.zip"))
	assert.DirExists(t, pkg.Dir())
}

func TestOpenCopiesReadme(t *testing.T) {
	readme := filepath.Join(t.TempDir(), "VEOReadme.txt")
	testsupport.WriteText(t, readme, "about VEOs")

	b := &veo.Builder{Readme: readme}
	pkg, err := b.Open(t.TempDir(), "AB-21-1", "SHA-512")
	require.NoError(t, err)
	defer pkg.Abandon()

	data, err := os.ReadFile(filepath.Join(pkg.Dir(), veo.ReadmeFile))
	require.NoError(t, err)
	assert.Equal(t, "about VEOs", string(data))
}

func TestOutOfSequenceCallsFail(t *testing.T) {
	b := &veo.Builder{}
	pkg, err := b.Open(t.TempDir(), "AB-21-1", "SHA-512")
	require.NoError(t, err)
	defer pkg.Abandon()

	assert.ErrorIs(t, pkg.AddMetadataPackage("s", "x", ""), failure.ErrFinalize)
	assert.ErrorIs(t, pkg.AddInformationPiece(""), failure.ErrFinalize)
	assert.ErrorIs(t, pkg.AddInformationObject("", 2), failure.ErrFinalize)

	require.NoError(t, pkg.AddInformationObject("", 1))
	assert.ErrorIs(t, pkg.AddContentFile("a/b.pdf", "missing"), failure.ErrContentAttach)
	assert.ErrorIs(t, pkg.AddInformationObject("", 3), failure.ErrFinalize)

	require.NoError(t, pkg.AddInformationPiece(""))
	assert.ErrorIs(t, pkg.AddMetadataPackage("s", "x", ""), failure.ErrFinalize)
	assert.ErrorIs(t, pkg.AddContentFile("../escape.pdf", "missing"), failure.ErrContentAttach)
	assert.ErrorIs(t, pkg.AddContentFile("a/b.pdf", filepath.Join(t.TempDir(), "missing.pdf")), failure.ErrContentAttach)
}

func TestFinalizeWithoutSignerAbandons(t *testing.T) {
	out := t.TempDir()
	b := &veo.Builder{}
	pkg, err := b.Open(out, "AB-21-1", "SHA-512")
	require.NoError(t, err)
	require.NoError(t, pkg.AddInformationObject("", 1))

	err = pkg.Finalize(true)
	require.ErrorIs(t, err, failure.ErrFinalize)
	assert.NoDirExists(t, pkg.Dir())
	assert.NoFileExists(t, pkg.ZipPath())
	assert.ErrorIs(t, pkg.AddInformationObject("", 1), failure.ErrFinalize)
}

func TestOpenRejectsBadInput(t *testing.T) {
	b := &veo.Builder{}
	_, err := b.Open(t.TempDir(), "AB/21/1", "SHA-512")
	assert.ErrorIs(t, err, failure.ErrFinalize)
	_, err = b.Open(t.TempDir(), "AB-21-1", "MD5")
	assert.ErrorIs(t, err, failure.ErrFinalize)
}

func TestAbandonRemovesDirectory(t *testing.T) {
	b := &veo.Builder{}
	pkg, err := b.Open(t.TempDir(), "AB-21-1", "SHA-512")
	require.NoError(t, err)
	pkg.Abandon()
	assert.NoDirExists(t, pkg.Dir())
}
