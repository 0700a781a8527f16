package records_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/logging"
	"trimveo/internal/recordid"
	"trimveo/internal/records"
	"trimveo/internal/testsupport"
)

func build(t *testing.T, rows ...[]string) *records.Table {
	t.Helper()
	table, b := newTable(t)
	n := records.NewNormalizer(b, nil, records.LastWriteWins, logging.NewNop())
	for i, row := range rows {
		_, err := n.Apply(table, row, i+2)
		require.NoError(t, err)
	}
	return table
}

func TestAssembleCreatesOneStubPerMissingContainer(t *testing.T) {
	table := build(t,
		testsupport.Row("AB/21/2", "a", "ZZ/21/1", "2021", "", ""),
		testsupport.Row("AB/21/3", "b", "ZZ/2021/1", "2021", "", ""),
		testsupport.Row("AB/21/1", "root", "", "2021", "", ""),
	)

	result := records.Assemble(table, logging.NewNop())

	require.Len(t, result.Stubs, 1)
	stub := result.Stubs[0]
	assert.Equal(t, "ZZ/21/1", stub.Key())
	assert.False(t, stub.Defined)
	assert.Empty(t, stub.RawID)
	assert.True(t, stub.Referenced)
	assert.Equal(t, []string{"AB/21/2", "AB/21/3"}, stub.ReferencedBy())

	require.Len(t, result.Roots, 1)
	assert.Equal(t, "AB/21/1", result.Roots[0].Key())
	assert.Equal(t, 4, table.Len())
	assert.Empty(t, result.Cycles)
}

func TestChildrenAreSortedByIdentifier(t *testing.T) {
	table := build(t,
		testsupport.Row("AB/21/1", "root", "", "2021", "", ""),
		testsupport.Row("AB/21/4", "c", "AB/21/1", "2021", "", ""),
		testsupport.Row("AB/21/2", "a", "AB/21/1", "2021", "", ""),
		testsupport.Row("AB/21/3", "b", "AB/2021/1", "2021", "", ""),
	)
	records.Assemble(table, logging.NewNop())

	children := table.Children(recordid.MustParse("AB/21/1"))
	var keys []string
	for _, c := range children {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"AB/21/2", "AB/21/3", "AB/21/4"}, keys)

	root, _ := table.Get("AB/21/1")
	assert.True(t, root.Referenced)
	assert.Equal(t, []string{"AB/21/2", "AB/21/3", "AB/21/4"}, root.ReferencedBy())
}

func TestFindCyclesReportsUnrootedLoop(t *testing.T) {
	table := build(t,
		testsupport.Row("AB/21/1", "root", "", "2021", "", ""),
		testsupport.Row("CY/21/1", "a", "CY/21/2", "2021", "", ""),
		testsupport.Row("CY/21/2", "b", "CY/21/1", "2021", "", ""),
		testsupport.Row("CY/21/3", "tail", "CY/21/1", "2021", "", ""),
		testsupport.Row("SE/21/1", "self", "SE/21/1", "2021", "", ""),
	)

	result := records.Assemble(table, logging.NewNop())
	assert.Equal(t, [][]string{{"CY/21/1", "CY/21/2"}, {"SE/21/1"}}, result.Cycles)
	require.Len(t, result.Roots, 1)
}

func TestRegistryStubsNeverReplaceDefined(t *testing.T) {
	defined := build(t, testsupport.Row("AB/21/1", "defined", "", "2021", "", ""))
	orphans := build(t, testsupport.Row("CD/21/1", "child", "AB/21/1", "2021", "", ""))
	records.Assemble(orphans, logging.NewNop())

	reg := records.NewRegistry()
	reg.Merge(defined)
	reg.Merge(orphans)

	rec, ok := reg.Get("AB/21/1")
	require.True(t, ok)
	assert.True(t, rec.Defined)
	assert.Equal(t, "defined", rec.Title)
	assert.True(t, rec.Referenced)
	assert.Equal(t, []string{"CD/21/1"}, rec.ReferencedBy())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryDefinedReplacesStub(t *testing.T) {
	orphans := build(t, testsupport.Row("CD/21/1", "child", "AB/21/1", "2021", "", ""))
	records.Assemble(orphans, logging.NewNop())
	defined := build(t, testsupport.Row("AB/21/1", "defined", "", "2021", "", ""))

	reg := records.NewRegistry()
	reg.Merge(orphans)
	reg.Merge(defined)

	rec, ok := reg.Get("AB/21/1")
	require.True(t, ok)
	assert.True(t, rec.Defined)
	assert.True(t, rec.Referenced)
	assert.Equal(t, []string{"CD/21/1"}, rec.ReferencedBy())

	var keys []string
	for _, r := range reg.Records() {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{"AB/21/1", "CD/21/1"}, keys)
}
