/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/records"
	"github.com/suparena/recordstore/schema"
)

// WriteDatum projects one named datum into its table pair. The value's kind
// (decided at classification time) picks the pair; each side is written in
// the arrangement its queries need.
//
// Without overwrite, every insert is conditional: a row already occupying
// the slot makes the insert an AlreadyPresent no-op, not an error. With
// overwrite the writes are unconditional. String-list elements always
// upsert (the element is part of the key, so re-insert lands on the same
// row).
func (s *Store) WriteDatum(ctx context.Context, id, name string, d records.Datum, overwrite bool) error {
	if id == "" {
		return errors.NewValidationError("id", "record id is required")
	}
	if name == "" {
		return errors.NewValidationError("name", "datum name is required")
	}
	if err := d.Validate(); err != nil {
		return err
	}

	// Record→value direction. Skipped for string lists, which are read back
	// from the raw document instead.
	if item, ok := schema.DataFromRecordItem(id, name, d); ok {
		if err := s.conditionalPut(ctx, item, overwrite); err != nil {
			return fmt.Errorf("failed to write datum %q for record %q: %w", name, id, err)
		}
	}

	// Value→record direction.
	switch d.Value.Kind() {
	case records.KindScalar:
		item := schema.RecordFromScalarItem(name, d.Value.Scalar(), id, d.Units, d.Tags)
		if err := s.conditionalPut(ctx, item, overwrite); err != nil {
			return fmt.Errorf("failed to index datum %q for record %q: %w", name, id, err)
		}
	case records.KindString:
		item := schema.RecordFromStringItem(name, d.Value.Str(), id, d.Units, d.Tags)
		if err := s.conditionalPut(ctx, item, overwrite); err != nil {
			return fmt.Errorf("failed to index datum %q for record %q: %w", name, id, err)
		}
	case records.KindScalarList:
		// One Min row and one Max row per list. Range queries test
		// intersection with [min, max], not interior membership. Empty
		// lists have no bounds and index nothing.
		if d.Value.Len() > 0 {
			minItem := schema.RecordFromScalarListMinItem(name, d.Value.Min(), id)
			if err := s.conditionalPut(ctx, minItem, overwrite); err != nil {
				return fmt.Errorf("failed to index datum %q for record %q: %w", name, id, err)
			}
			maxItem := schema.RecordFromScalarListMaxItem(name, d.Value.Max(), id)
			if err := s.conditionalPut(ctx, maxItem, overwrite); err != nil {
				return fmt.Errorf("failed to index datum %q for record %q: %w", name, id, err)
			}
		}
	case records.KindStringList:
		for _, element := range d.Value.StringList() {
			if err := s.backend.Put(ctx, schema.RecordFromStringListItem(name, element, id)); err != nil {
				return fmt.Errorf("failed to index datum %q for record %q: %w", name, id, err)
			}
		}
	}
	return nil
}

func (s *Store) conditionalPut(ctx context.Context, item schema.Item, overwrite bool) error {
	if overwrite {
		return s.backend.Put(ctx, item)
	}
	_, err := s.backend.PutIfAbsent(ctx, item)
	return err
}

// deleteGuard deduplicates keys staged into one atomic batch. The backend
// rejects a batch naming the same row twice, which duplicate list elements
// and self-referential relationships produce.
type deleteGuard struct {
	batch datastore.Batch
	seen  map[schema.Key]struct{}
}

func newDeleteGuard(batch datastore.Batch) *deleteGuard {
	return &deleteGuard{batch: batch, seen: make(map[schema.Key]struct{})}
}

func (g *deleteGuard) delete(key schema.Key) {
	if _, dup := g.seen[key]; dup {
		return
	}
	g.seen[key] = struct{}{}
	g.batch.Delete(key)
}

// DeleteDatum stages the paired delete statements for one datum into the
// batch. Nothing executes until the caller commits: a record's full
// deletion spans one of these calls per datum and must be all-or-nothing.
func (s *Store) DeleteDatum(batch datastore.Batch, id, name string, d records.Datum) {
	s.stageDatumDelete(newDeleteGuard(batch), id, name, d)
}

func (s *Store) stageDatumDelete(g *deleteGuard, id, name string, d records.Datum) {
	if key, ok := schema.DataFromRecordKey(d.Value.Kind(), id, name); ok {
		g.delete(key)
	}
	switch d.Value.Kind() {
	case records.KindScalar:
		g.delete(schema.RecordFromScalarKey(name, d.Value.Scalar(), id))
	case records.KindString:
		g.delete(schema.RecordFromStringKey(name, d.Value.Str(), id))
	case records.KindScalarList:
		if d.Value.Len() > 0 {
			g.delete(schema.RecordFromScalarListMinKey(name, d.Value.Min(), id))
			g.delete(schema.RecordFromScalarListMaxKey(name, d.Value.Max(), id))
		}
	case records.KindStringList:
		for _, element := range d.Value.StringList() {
			g.delete(schema.RecordFromStringListKey(name, element, id))
		}
	}
}

// DeleteRecord removes a record and everything derived from it (data rows
// on both sides of every pair, file rows, and both directions of every
// relationship it participates in) as one atomic batch.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	batch := s.backend.NewBatch()
	if err := s.stageRecordDelete(ctx, newDeleteGuard(batch), id); err != nil {
		return err
	}
	return batch.Commit(ctx)
}

// DeleteRecords removes several records in a single atomic batch. For one
// batch per record, call DeleteRecord in a loop instead.
func (s *Store) DeleteRecords(ctx context.Context, ids ...string) error {
	batch := s.backend.NewBatch()
	g := newDeleteGuard(batch)
	for _, id := range ids {
		if err := s.stageRecordDelete(ctx, g, id); err != nil {
			return err
		}
	}
	return batch.Commit(ctx)
}

// stageRecordDelete adds the deletion statements for one record. There are
// no foreign keys in the backend, so deleting a record means manually
// naming every projection row that refers to it; the raw document is read
// first to recover the keys.
func (s *Store) stageRecordDelete(ctx context.Context, g *deleteGuard, id string) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	g.delete(schema.RecordKey(id))
	for _, f := range rec.Files {
		g.delete(schema.FileKey(id, f.URI))
	}
	for name, datum := range rec.Data {
		s.stageDatumDelete(g, id, name, datum)
	}

	// Relationships are created independently of records, so discover them
	// from both mirrored tables. Mirroring makes this two partition reads.
	outgoing, err := s.ObjectsOf(ctx, id, "")
	if err != nil {
		return err
	}
	incoming, err := s.SubjectsOf(ctx, id, "")
	if err != nil {
		return err
	}
	for _, rel := range append(outgoing, incoming...) {
		g.delete(schema.ObjectFromSubjectKey(rel))
		g.delete(schema.SubjectFromObjectKey(rel))
	}
	return nil
}

// DataQuery returns the ids of all records whose data satisfy every
// criterion. Each criterion is one partition scan of its RecordFromX table;
// the id sets are intersected here because the backend has no joins.
func (s *Store) DataQuery(ctx context.Context, criteria ...datastore.Criterion) ([]string, error) {
	if len(criteria) == 0 {
		return nil, errors.NewValidationError("criteria", "at least one criterion is required")
	}
	var result map[string]bool
	for _, crit := range criteria {
		ids, err := s.idsForCriterion(ctx, crit)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = ids
		} else {
			for id := range result {
				if !ids[id] {
					delete(result, id)
				}
			}
		}
		if len(result) == 0 {
			break
		}
	}
	out := make([]string, 0, len(result))
	for id := range result {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) idsForCriterion(ctx context.Context, crit datastore.Criterion) (map[string]bool, error) {
	if crit.Name == "" {
		return nil, errors.NewValidationError("criteria", "criterion name is required")
	}
	switch crit.Kind {
	case records.KindScalar:
		if crit.Scalar == nil {
			return nil, errors.NewValidationError("criteria", "scalar criterion without a range")
		}
		return s.scanScalarTable(ctx, schema.RecordFromScalarData, crit.Name, *crit.Scalar)
	case records.KindString:
		if crit.String == nil {
			return nil, errors.NewValidationError("criteria", "string criterion without a range")
		}
		return s.scanStringTable(ctx, schema.RecordFromStringData, crit.Name, *crit.String)
	case records.KindScalarList:
		if crit.Scalar == nil {
			return nil, errors.NewValidationError("criteria", "scalar-list criterion without a range")
		}
		return s.scanScalarListTables(ctx, crit.Name, *crit.Scalar)
	case records.KindStringList:
		if crit.String == nil {
			return nil, errors.NewValidationError("criteria", "string-list criterion without a range")
		}
		return s.scanStringTable(ctx, schema.RecordFromStringListData, crit.Name, *crit.String)
	default:
		return nil, errors.NewValidationError("criteria", "unsupported criterion kind")
	}
}

// scalarSortCond turns a numeric range into a sort-key condition on a
// RecordFromX table whose keys are enc(value)+Sep+id. Bounds are widened to
// inclusive here; exclusivity is enforced by post-filtering on the stored
// value attribute.
func scalarSortCond(r datastore.ScalarRange) *datastore.SortCond {
	var lo, hi string
	if r.Min != nil {
		lo = schema.EncodeScalar(*r.Min)
	}
	if r.Max != nil {
		hi = schema.EncodeScalar(*r.Max) + schema.SepUpper
	}
	switch {
	case r.Min != nil && r.Max != nil:
		return datastore.SortRange(lo, hi)
	case r.Min != nil:
		return datastore.SortMin(lo)
	case r.Max != nil:
		return datastore.SortMax(hi)
	default:
		return nil
	}
}

func stringSortCond(r datastore.StringRange) *datastore.SortCond {
	if r.Min != nil && r.Max != nil && *r.Min == *r.Max && r.MinInclusive && r.MaxInclusive {
		return datastore.SortPrefix(*r.Min + schema.Sep)
	}
	switch {
	case r.Min != nil && r.Max != nil:
		return datastore.SortRange(*r.Min, *r.Max+schema.SepUpper)
	case r.Min != nil:
		return datastore.SortMin(*r.Min)
	case r.Max != nil:
		return datastore.SortMax(*r.Max + schema.SepUpper)
	default:
		return nil
	}
}

func (s *Store) scanScalarTable(ctx context.Context, table schema.Table, name string, r datastore.ScalarRange) (map[string]bool, error) {
	items, err := s.backend.Query(ctx, datastore.Query{
		Partition: schema.DataPartition(table, name),
		Sort:      scalarSortCond(r),
	})
	if err != nil {
		return nil, fmt.Errorf("data query on %q failed: %w", name, err)
	}
	ids := make(map[string]bool)
	for _, item := range items {
		v, ok := schema.Float(item.Attrs[schema.AttrValue])
		if !ok || !r.Contains(v) {
			continue
		}
		if id, ok := schema.Str(item.Attrs[schema.AttrRecordID]); ok {
			ids[id] = true
		}
	}
	return ids, nil
}

func (s *Store) scanStringTable(ctx context.Context, table schema.Table, name string, r datastore.StringRange) (map[string]bool, error) {
	items, err := s.backend.Query(ctx, datastore.Query{
		Partition: schema.DataPartition(table, name),
		Sort:      stringSortCond(r),
	})
	if err != nil {
		return nil, fmt.Errorf("data query on %q failed: %w", name, err)
	}
	ids := make(map[string]bool)
	for _, item := range items {
		v, ok := schema.Str(item.Attrs[schema.AttrValue])
		if !ok || !r.Contains(v) {
			continue
		}
		if id, ok := schema.Str(item.Attrs[schema.AttrRecordID]); ok {
			ids[id] = true
		}
	}
	return ids, nil
}

// scanScalarListTables combines the Min and Max tables: a record matches
// when its list's [min, max] interval intersects the range. This is an
// intersection test, not containment or membership.
func (s *Store) scanScalarListTables(ctx context.Context, name string, r datastore.ScalarRange) (map[string]bool, error) {
	var minCond, maxCond *datastore.SortCond
	if r.Max != nil {
		// list min must sit at or below the range's upper bound
		minCond = datastore.SortMax(schema.EncodeScalar(*r.Max) + schema.SepUpper)
	}
	if r.Min != nil {
		// list max must sit at or above the range's lower bound
		maxCond = datastore.SortMin(schema.EncodeScalar(*r.Min))
	}

	minItems, err := s.backend.Query(ctx, datastore.Query{
		Partition: schema.DataPartition(schema.RecordFromScalarListMin, name),
		Sort:      minCond,
	})
	if err != nil {
		return nil, fmt.Errorf("scalar-list query on %q failed: %w", name, err)
	}
	maxItems, err := s.backend.Query(ctx, datastore.Query{
		Partition: schema.DataPartition(schema.RecordFromScalarListMax, name),
		Sort:      maxCond,
	})
	if err != nil {
		return nil, fmt.Errorf("scalar-list query on %q failed: %w", name, err)
	}

	mins := make(map[string]float64, len(minItems))
	for _, item := range minItems {
		id, _ := schema.Str(item.Attrs[schema.AttrRecordID])
		if v, ok := schema.Float(item.Attrs[schema.AttrValue]); ok && id != "" {
			mins[id] = v
		}
	}
	ids := make(map[string]bool)
	for _, item := range maxItems {
		id, _ := schema.Str(item.Attrs[schema.AttrRecordID])
		max, ok := schema.Float(item.Attrs[schema.AttrValue])
		if !ok {
			continue
		}
		min, seen := mins[id]
		if seen && r.IntersectsInterval(min, max) {
			ids[id] = true
		}
	}
	return ids, nil
}

// DataForRecords retrieves a subset of data for each record id, keyed by id
// then datum name. Scalar, string, and scalar-list entries come from the
// XFromRecord projections; string lists come from the raw document, which
// is the only place their order and duplicates survive.
func (s *Store) DataForRecords(ctx context.Context, ids, names []string) (map[string]map[string]records.Datum, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	keep := func(name string) bool { return len(want) == 0 || want[name] }

	out := make(map[string]map[string]records.Datum)
	for _, id := range ids {
		data := make(map[string]records.Datum)
		for _, table := range []schema.Table{
			schema.ScalarDataFromRecord,
			schema.StringDataFromRecord,
			schema.ScalarListDataFromRecord,
		} {
			items, err := s.backend.Query(ctx, datastore.Query{
				Partition: schema.RecordPartition(id),
				Sort:      datastore.SortPrefix(schema.SKPrefixFor(table)),
			})
			if err != nil {
				return nil, fmt.Errorf("data read for record %q failed: %w", id, err)
			}
			for _, item := range items {
				name, _ := schema.Str(item.Attrs[schema.AttrName])
				if name == "" || !keep(name) {
					continue
				}
				if datum, ok := datumFromItem(item); ok {
					data[name] = datum
				}
			}
		}

		rec, err := s.GetRecord(ctx, id)
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		if rec != nil {
			for name, datum := range rec.Data {
				if datum.Value.Kind() == records.KindStringList && keep(name) {
					data[name] = datum
				}
			}
		}
		if len(data) > 0 {
			out[id] = data
		}
	}
	return out, nil
}

func datumFromItem(item schema.Item) (records.Datum, bool) {
	var d records.Datum
	d.Units, _ = schema.Str(item.Attrs[schema.AttrUnits])
	d.Tags, _ = schema.Strings(item.Attrs[schema.AttrTags])

	et, _ := schema.Str(item.Attrs[schema.AttrEntityType])
	switch et {
	case records.KindScalar.String():
		v, ok := schema.Float(item.Attrs[schema.AttrValue])
		if !ok {
			return d, false
		}
		d.Value = records.ScalarValue(v)
	case records.KindString.String():
		v, ok := schema.Str(item.Attrs[schema.AttrValue])
		if !ok {
			return d, false
		}
		d.Value = records.StringValue(v)
	case records.KindScalarList.String():
		v, ok := schema.Floats(item.Attrs[schema.AttrValue])
		if !ok {
			return d, false
		}
		d.Value = records.ScalarListValue(v...)
	default:
		return d, false
	}
	return d, true
}
