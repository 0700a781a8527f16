package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/failure"
	"trimveo/internal/schema"
)

func standardHeader() []string {
	return []string{
		"Expanded Number", "Title (Free Text Part)", "Folder", "Classification",
		"Date Created", "Date Registered", "Record Type", "DOS file", "Retention schedule",
	}
}

func TestBindStandardHeader(t *testing.T) {
	b, err := schema.Bind(standardHeader())
	require.NoError(t, err)

	idx, ok := b.Index(schema.RoleID)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	idx, ok = b.Index(schema.RoleContainer)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.False(t, b.Has(schema.RoleContainedRecords))
	assert.Equal(t, 9, b.Width())
}

func TestBindAcceptsContainerLabelAndOptionalRoles(t *testing.T) {
	header := standardHeader()
	header[2] = "Container"
	header = append(header, "*Contained Records*", "*Is Part*")

	b, err := schema.Bind(header)
	require.NoError(t, err)
	idx, _ := b.Index(schema.RoleContainer)
	assert.Equal(t, 2, idx)
	assert.True(t, b.Has(schema.RoleContainedRecords))
	assert.True(t, b.Has(schema.RoleIsPart))
}

func TestBindTrimsLabelsAndByteOrderMark(t *testing.T) {
	header := standardHeader()
	header[0] = "\ufeffExpanded Number "
	b, err := schema.Bind(header)
	require.NoError(t, err)
	assert.Equal(t, "Expanded Number", b.Header()[0])
}

func TestBindIsCaseSensitive(t *testing.T) {
	header := standardHeader()
	header[3] = "classification"
	_, err := schema.Bind(header)
	require.Error(t, err)

	var missing *schema.MissingRoleError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, schema.RoleClassification, missing.Role)
	assert.True(t, errors.Is(err, failure.ErrSchema))
}

func TestBindReportsFirstMissingRole(t *testing.T) {
	_, err := schema.Bind([]string{"Record Type", "Title (Free Text Part)"})
	var missing *schema.MissingRoleError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, schema.RoleID, missing.Role)
	assert.Contains(t, err.Error(), "Expanded Number")
}

func TestValueHandlesShortRows(t *testing.T) {
	b, err := schema.Bind(standardHeader())
	require.NoError(t, err)

	row := []string{" AB/2021/1 ", "Title"}
	assert.Equal(t, "AB/2021/1", b.Value(row, schema.RoleID))
	assert.Equal(t, "", b.Value(row, schema.RoleRetentionSchedule))
	assert.Equal(t, "", b.Value(row, schema.RoleIsPart))
}
