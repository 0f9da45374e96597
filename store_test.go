/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/memory"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/records"
)

func newTestStore(t *testing.T) (*recordstore.Store, *memory.Store) {
	t.Helper()
	backend := memory.New()
	return recordstore.New(backend), backend
}

func runRecord(t *testing.T, id string, temp float64) *records.Record {
	t.Helper()
	rec := records.New(id, "run")
	require.NoError(t, rec.SetData("temperature", temp))
	return rec
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("spam_eggs_1", "run")
	require.NoError(t, rec.SetData("temperature", 98.6))
	require.NoError(t, rec.SetData("scheduler", "slurm"))
	require.NoError(t, rec.SetData("velocities", []any{0.0, 0.5, 1.0}))
	require.NoError(t, rec.SetData("menu", []any{"eggs", "spam", "spam"}))
	rec.Files = []records.File{{URI: "mock://out.png", Mimetype: "image/png"}}
	rec.UserDefined = map[string]any{"nested": map[string]any{"anything": true}}

	require.NoError(t, store.PutRecord(ctx, rec, false))

	got, err := store.GetRecord(ctx, "spam_eggs_1")
	require.NoError(t, err)
	assert.Equal(t, "run", got.Type)
	assert.Equal(t, 98.6, got.Data["temperature"].Value.Scalar())
	assert.Equal(t, "slurm", got.Data["scheduler"].Value.Str())
	assert.Equal(t, []string{"eggs", "spam", "spam"}, got.Data["menu"].Value.StringList(),
		"raw document keeps string list order and duplicates")
	assert.NotNil(t, got.UserDefined["nested"])
}

func TestGetRecordNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.GetRecord(ctx, "ghost")
	assert.True(t, errors.IsNotFound(err))
}

func TestPutRecordDuplicateID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.PutRecord(ctx, runRecord(t, "run_1", 1.0), false))

	err := store.PutRecord(ctx, runRecord(t, "run_1", 2.0), false)
	assert.True(t, errors.IsAlreadyExists(err))

	got, err := store.GetRecord(ctx, "run_1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Data["temperature"].Value.Scalar(),
		"losing insert must not clobber the document")
}

func TestPutRecordOverwrite(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.PutRecord(ctx, runRecord(t, "run_1", 1.0), false))
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "run_1", 2.0), true))

	got, err := store.GetRecord(ctx, "run_1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Data["temperature"].Value.Scalar())

	data, err := store.DataForRecords(ctx, []string{"run_1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, data["run_1"]["temperature"].Value.Scalar(),
		"overwrite must replace the datum slot, not add a second one")
}

func TestWriteDatumSwallowsAlreadyPresent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "run_1", 98.6), false))

	// Re-ingesting the same datum without overwrite is a silent no-op even
	// when the incoming value differs.
	d := records.Datum{Value: records.ScalarValue(50.0)}
	require.NoError(t, store.WriteDatum(ctx, "run_1", "temperature", d, false))

	data, err := store.DataForRecords(ctx, []string{"run_1"}, []string{"temperature"})
	require.NoError(t, err)
	assert.Equal(t, 98.6, data["run_1"]["temperature"].Value.Scalar())
}

func TestDataQueryScalarEquality(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "hot", 98.6), false))
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "cold", 12.0), false))

	ids, err := store.DataQuery(ctx, datastore.ScalarEquals("temperature", 98.6))
	require.NoError(t, err)
	assert.Equal(t, []string{"hot"}, ids)

	ids, err = store.DataQuery(ctx, datastore.ScalarEquals("temperature", 500))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDataQueryScalarRanges(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for id, temp := range map[string]float64{"a": -5, "b": 0, "c": 98.6, "d": 400} {
		require.NoError(t, store.PutRecord(ctx, runRecord(t, id, temp), false))
	}

	ids, err := store.DataQuery(ctx, datastore.ScalarBetween("temperature", 0, 100))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids, "inclusive bounds, ids sorted")

	// Exclusive lower bound drops the boundary value.
	lo, hi := 0.0, 100.0
	ids, err = store.DataQuery(ctx, datastore.ScalarIn("temperature",
		datastore.ScalarRange{Min: &lo, Max: &hi, MaxInclusive: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)

	// One-sided range.
	ids, err = store.DataQuery(ctx, datastore.ScalarIn("temperature",
		datastore.ScalarRange{Min: &hi, MinInclusive: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids)
}

func TestDataQueryStringCriteria(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	mk := func(id, sched string) *records.Record {
		rec := records.New(id, "run")
		require.NoError(t, rec.SetData("scheduler", sched))
		return rec
	}
	require.NoError(t, store.PutRecord(ctx, mk("r1", "slurm"), false))
	require.NoError(t, store.PutRecord(ctx, mk("r2", "flux"), false))

	ids, err := store.DataQuery(ctx, datastore.StringEquals("scheduler", "slurm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)

	min := "a"
	ids, err = store.DataQuery(ctx, datastore.StringIn("scheduler",
		datastore.StringRange{Min: &min, MinInclusive: true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestDataQueryIntersectsCriteria(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("match", "run")
	require.NoError(t, rec.SetData("temperature", 98.6))
	require.NoError(t, rec.SetData("scheduler", "slurm"))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	other := records.New("half_match", "run")
	require.NoError(t, other.SetData("temperature", 98.6))
	require.NoError(t, other.SetData("scheduler", "flux"))
	require.NoError(t, store.PutRecord(ctx, other, false))

	ids, err := store.DataQuery(ctx,
		datastore.ScalarEquals("temperature", 98.6),
		datastore.StringEquals("scheduler", "slurm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"match"}, ids, "criteria are ANDed")
}

func TestDataQueryScalarListIntersection(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("wide", "run")
	require.NoError(t, rec.SetData("velocities", []any{1.0, 10.0}))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	// The range [5, 6] holds no element of the list, but it intersects the
	// list's [1, 10] interval, so it matches.
	ids, err := store.DataQuery(ctx, datastore.ListIntersects("velocities", 5, 6))
	require.NoError(t, err)
	assert.Equal(t, []string{"wide"}, ids)

	ids, err = store.DataQuery(ctx, datastore.ListIntersects("velocities", 11, 12))
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = store.DataQuery(ctx, datastore.ListIntersects("velocities", 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"wide"}, ids, "boundary touch counts as intersection")
}

func TestDataQueryStringListHas(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("breakfast", "run")
	require.NoError(t, rec.SetData("menu", []any{"eggs", "spam", "spam"}))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	ids, err := store.DataQuery(ctx, datastore.ListHas("menu", "spam"))
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast"}, ids)

	ids, err = store.DataQuery(ctx, datastore.ListHas("menu", "toast"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStringListReinsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	rec := records.New("breakfast", "run")
	require.NoError(t, rec.SetData("menu", []any{"eggs", "spam", "spam"}))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	before := backend.Len()
	require.NoError(t, store.WriteDatum(ctx, "breakfast", "menu", rec.Data["menu"], false))
	assert.Equal(t, before, backend.Len(), "re-inserting the same list must land on the same rows")

	ids, err := store.DataQuery(ctx, datastore.ListHas("menu", "spam"))
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast"}, ids)
}

func TestDataQueryNoCriteria(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.DataQuery(ctx)
	assert.True(t, errors.IsValidationError(err))
}

func TestEmptyScalarListIsInvisibleToQueries(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("empty", "run")
	require.NoError(t, rec.SetData("velocities", []any{}))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	ids, err := store.DataQuery(ctx, datastore.ListIntersects("velocities", -1e300, 1e300))
	require.NoError(t, err)
	assert.Empty(t, ids, "empty list has no bounds, so no range can match it")

	// The datum itself still reads back.
	data, err := store.DataForRecords(ctx, []string{"empty"}, nil)
	require.NoError(t, err)
	assert.Len(t, data["empty"]["velocities"].Value.ScalarList(), 0)
}

func TestDataForRecords(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("r1", "run")
	rec.Data["temperature"] = records.Datum{Value: records.ScalarValue(98.6), Units: "F", Tags: []string{"output"}}
	require.NoError(t, rec.SetData("scheduler", "slurm"))
	require.NoError(t, rec.SetData("menu", []any{"eggs", "spam"}))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	data, err := store.DataForRecords(ctx, []string{"r1", "missing"}, nil)
	require.NoError(t, err)
	require.Contains(t, data, "r1")
	assert.NotContains(t, data, "missing")
	assert.Equal(t, "F", data["r1"]["temperature"].Units)
	assert.Equal(t, []string{"output"}, data["r1"]["temperature"].Tags)
	assert.Equal(t, []string{"eggs", "spam"}, data["r1"]["menu"].Value.StringList())

	// Name filter.
	data, err = store.DataForRecords(ctx, []string{"r1"}, []string{"scheduler"})
	require.NoError(t, err)
	assert.Len(t, data["r1"], 1)
	assert.Equal(t, "slurm", data["r1"]["scheduler"].Value.Str())
}

func TestLinkAndTraversal(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Link(ctx, "task_1", "contains", "run_22"))
	require.NoError(t, store.Link(ctx, "task_1", "contains", "run_23"))
	require.NoError(t, store.Link(ctx, "task_1", "overviews", "run_22"))

	out, err := store.ObjectsOf(ctx, "task_1", "contains")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "run_22", out[0].Object)
	assert.Equal(t, "run_23", out[1].Object)

	all, err := store.ObjectsOf(ctx, "task_1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	in, err := store.SubjectsOf(ctx, "run_22", "contains")
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "task_1", in[0].Subject)

	// Mirrors agree regardless of which side is asked.
	inAll, err := store.SubjectsOf(ctx, "run_22", "")
	require.NoError(t, err)
	assert.Len(t, inAll, 2)
}

func TestLinkValidation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	assert.Error(t, store.Link(ctx, "", "contains", "x"))
	assert.Error(t, store.Link(ctx, "a", "bad\x1fpred", "x"))
}

func TestLinkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	require.NoError(t, store.Link(ctx, "a", "knows", "b"))
	require.NoError(t, store.Link(ctx, "a", "knows", "b"))
	assert.Equal(t, 2, backend.Len(), "re-link must land on the same two rows")
}

func TestDeleteRecordRemovesEverything(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	rec := records.New("doomed", "run")
	require.NoError(t, rec.SetData("temperature", 98.6))
	require.NoError(t, rec.SetData("scheduler", "slurm"))
	require.NoError(t, rec.SetData("velocities", []any{1.0, 2.0}))
	require.NoError(t, rec.SetData("menu", []any{"eggs", "spam"}))
	rec.Files = []records.File{{URI: "mock://a.png"}, {URI: "mock://b.png"}}
	require.NoError(t, store.PutRecord(ctx, rec, false))
	require.NoError(t, store.Link(ctx, "doomed", "contains", "doomed"))

	require.NoError(t, store.DeleteRecord(ctx, "doomed"))
	assert.Equal(t, 0, backend.Len(), "every projection row must go")

	_, err := store.GetRecord(ctx, "doomed")
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteRecordLeavesNeighborsAlone(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.PutRecord(ctx, runRecord(t, "keep", 98.6), false))
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "drop", 98.6), false))
	require.NoError(t, store.Link(ctx, "keep", "overviews", "drop"))

	require.NoError(t, store.DeleteRecord(ctx, "drop"))

	ids, err := store.DataQuery(ctx, datastore.ScalarEquals("temperature", 98.6))
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, ids)

	// The shared relationship is gone from both directions.
	out, err := store.ObjectsOf(ctx, "keep", "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDeleteRecordMissing(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	err := store.DeleteRecord(ctx, "ghost")
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteRecordsSharedRelationship(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	require.NoError(t, store.PutRecord(ctx, runRecord(t, "a", 1), false))
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "b", 2), false))
	// Both endpoints are being deleted, so each mirrored row is discovered
	// twice; the batch must still commit.
	require.NoError(t, store.Link(ctx, "a", "contains", "b"))
	require.NoError(t, store.Link(ctx, "b", "overviews", "a"))

	require.NoError(t, store.DeleteRecords(ctx, "a", "b"))
	assert.Equal(t, 0, backend.Len())
}

func TestDeleteDatumIntoBatch(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	rec := records.New("r1", "run")
	require.NoError(t, rec.SetData("menu", []any{"spam", "spam", "eggs"}))
	require.NoError(t, store.PutRecord(ctx, rec, false))

	d := rec.Data["menu"]
	batch := backend.NewBatch()
	store.DeleteDatum(batch, "r1", "menu", d)
	// Nothing happens before commit.
	ids, err := store.DataQuery(ctx, datastore.ListHas("menu", "spam"))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)

	require.NoError(t, batch.Commit(ctx))
	ids, err = store.DataQuery(ctx, datastore.ListHas("menu", "spam"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecordIDsOfType(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.PutRecord(ctx, runRecord(t, "run_b", 1), false))
	require.NoError(t, store.PutRecord(ctx, runRecord(t, "run_a", 2), false))
	require.NoError(t, store.PutRecord(ctx, records.New("task_1", "task"), false))

	ids, err := store.RecordIDsOfType(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []string{"run_a", "run_b"}, ids)

	ids, err = store.RecordIDsOfType(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStreamRecordsOfType(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		require.NoError(t, store.PutRecord(ctx, runRecord(t, id, 1), false))
	}

	var got []string
	for res := range store.StreamRecordsOfType(ctx, "run", datastore.WithPageSize(2)) {
		require.NoError(t, res.Err)
		got = append(got, res.Record.ID)
	}
	assert.Equal(t, []string{"r1", "r2", "r3", "r4", "r5"}, got)
}

func TestFilesForAndURISearch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := records.New("r1", "run")
	rec.Files = []records.File{
		{URI: "mock://sim/out.png", Mimetype: "image/png", Tags: []string{"image"}},
		{URI: "mock://sim/log.txt"},
	}
	require.NoError(t, store.PutRecord(ctx, rec, false))

	other := records.New("r2", "run")
	other.Files = []records.File{{URI: "real://elsewhere/out.png"}}
	require.NoError(t, store.PutRecord(ctx, other, false))

	files, err := store.FilesFor(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "mock://sim/log.txt", files[0].URI, "sorted by uri")
	assert.Equal(t, "image/png", files[1].Mimetype)

	ids, err := store.RecordIDsWithFileURI(ctx, "mock://%")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)

	ids, err = store.RecordIDsWithFileURI(ctx, "%out.png")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2"}, ids)

	ids, err = store.RecordIDsWithFileURI(ctx, "mock://sim/log.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids, "no wildcard means exact match")

	ids, err = store.RecordIDsWithFileURI(ctx, "mock://%log%")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}

func TestPersistenceAcrossStores(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	first := recordstore.New(backend)
	require.NoError(t, first.PutRecord(ctx, runRecord(t, "r1", 98.6), false))

	// A fresh engine over the same backend sees everything.
	second := recordstore.New(backend)
	ids, err := second.DataQuery(ctx, datastore.ScalarEquals("temperature", 98.6))
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}

func TestPutRecordsAndGetRecords(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	recs := []*records.Record{runRecord(t, "a", 1), runRecord(t, "b", 2)}
	require.NoError(t, store.PutRecords(ctx, recs, false))

	got, err := store.GetRecords(ctx, []string{"a", "missing", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2, "missing ids are skipped, not errors")
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestEmptyListClassifierOption(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	store := recordstore.New(backend,
		recordstore.WithClassifier(records.Classifier{EmptyListKind: records.KindStringList}))

	v, err := store.Classifier().Classify([]any{})
	require.NoError(t, err)
	assert.Equal(t, records.KindStringList, v.Kind())

	rec := records.New("r1", "run")
	rec.Data["empty"] = records.Datum{Value: v}
	require.NoError(t, store.PutRecord(ctx, rec, false))

	// An empty string list indexes no elements, so nothing matches it.
	ids, err := store.DataQuery(ctx, datastore.ListHas("empty", ""))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
