package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/template"
)

func TestLoadEmptyDirUsesDefaults(t *testing.T) {
	set, err := template.Load("")
	require.NoError(t, err)
	assert.Empty(t, set.AGLSCommon)
	assert.Equal(t, template.DefaultPlaceholder, set.Placeholder)
}

func TestLoadReadsFragments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, template.AGLSCommonFile), []byte("  <dcterms:rights>Crown</dcterms:rights>\n"), 0o644))

	set, err := template.Load(dir)
	require.NoError(t, err)
	assert.Contains(t, set.AGLSCommon, "dcterms:rights")
	assert.Equal(t, template.DefaultPlaceholder, set.Placeholder)

	require.NoError(t, os.WriteFile(filepath.Join(dir, template.PlaceholderFile), []byte("custom\n"), 0o644))
	set, err = template.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom\n", set.Placeholder)
}

func TestLoadRequiresAGLSCommon(t *testing.T) {
	_, err := template.Load(t.TempDir())
	require.Error(t, err)
}
