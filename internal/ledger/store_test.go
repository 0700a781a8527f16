package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimveo/internal/ledger"
	"trimveo/internal/recordid"
	"trimveo/internal/records"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func defined(key, container string, state records.State) *records.Record {
	rec := &records.Record{
		ID:      recordid.MustParse(key),
		RawID:   key,
		Title:   "title " + key,
		Defined: true,
		State:   state,
		Source:  "export.txt",
	}
	if container != "" {
		rec.Container = recordid.MustParse(container)
	} else {
		rec.Root = true
	}
	return rec
}

func TestSaveRunAndList(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	first := ledger.Run{ID: "run-1", Started: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Inputs: []string{"a.txt", "b.txt"}, Exported: 2}
	second := ledger.Run{ID: "run-2", Started: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), DryRun: true, ContentBytes: 99}
	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))

	first.Exported = 3
	require.NoError(t, store.SaveRun(ctx, first))

	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, int64(99), runs[0].ContentBytes)
	assert.Equal(t, []string{"a.txt", "b.txt"}, runs[1].Inputs)
	assert.Equal(t, 3, runs[1].Exported)
	assert.True(t, runs[1].Started.Equal(first.Started))

	limited, err := store.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.Error(t, store.SaveRun(ctx, ledger.Run{}))
}

func TestMergeRecordsKeepsDefinedOverStub(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.SaveRun(ctx, ledger.Run{ID: "run-1"}))
	require.NoError(t, store.SaveRun(ctx, ledger.Run{ID: "run-2"}))

	root := defined("AB/21/1", "", records.StateExported)
	root.Referenced = true
	root.AddReferencedBy("AB/21/2")
	child := defined("AB/21/2", "AB/21/1", records.StateExported)
	require.NoError(t, store.MergeRecords(ctx, "run-1", []*records.Record{root, child}))

	stub := records.NewStub(recordid.MustParse("AB/21/1"), "later.txt")
	stub.Referenced = true
	stub.AddReferencedBy("AB/21/9")
	require.NoError(t, store.MergeRecords(ctx, "run-2", []*records.Record{stub}))

	recs, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	got := recs[0]
	assert.Equal(t, "AB/21/1", got.Key())
	assert.True(t, got.Defined)
	assert.True(t, got.Root)
	assert.Equal(t, "export.txt", got.Source)
	assert.Equal(t, records.StateExported, got.State)
	assert.Equal(t, []string{"AB/21/2", "AB/21/9"}, got.ReferencedBy())

	assert.Equal(t, "AB/21/1", recs[1].ContainerKey())
	assert.True(t, recs[1].Exported())
}

func TestMergeRecordsDefinedReplacesStub(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.SaveRun(ctx, ledger.Run{ID: "run-1"}))

	stub := records.NewStub(recordid.MustParse("ZZ/21/1"), "a.txt")
	stub.Referenced = true
	stub.AddReferencedBy("AB/21/5")
	require.NoError(t, store.MergeRecords(ctx, "run-1", []*records.Record{stub}))

	rec := defined("ZZ/21/1", "", records.StateFailed)
	require.NoError(t, store.MergeRecords(ctx, "run-1", []*records.Record{rec}))

	recs, err := store.Records(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Defined)
	assert.True(t, recs[0].Referenced)
	assert.Equal(t, records.StateFailed, recs[0].State)
	assert.Equal(t, []string{"AB/21/5"}, recs[0].ReferencedBy())
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, ledger.Run{ID: "run-1"}))
	require.NoError(t, store.Close())

	store, err = ledger.Open(path)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
