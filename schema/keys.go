/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"math"

	"github.com/suparena/recordstore/records"
)

// EncodeScalar encodes a float64 as a fixed-width string whose byte order
// matches numeric order, so scalar values can live inside string sort keys
// and still support range scans. IEEE-754 offset-binary: flip all bits of
// negatives, flip only the sign bit of non-negatives.
func EncodeScalar(f float64) string {
	if f == 0 {
		f = 0 // collapse -0 and +0 to one key
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	return fmt.Sprintf("%016x", bits)
}

// --- Record store ---

// RecordKey returns the key of a record's authoritative row.
func RecordKey(id string) Key {
	return mustKey(RecordTable, map[string]string{"id": id})
}

// RecordItem builds the authoritative record row, including the type-index
// keys served by the secondary index.
func RecordItem(id, recordType string, raw []byte) Item {
	expanded := mustExpand(RecordTable, map[string]string{"id": id, "type": recordType})
	return Item{
		Key: Key{PK: expanded["PK"], SK: expanded["SK"]},
		Attrs: map[string]any{
			AttrEntityType: EntityRecord,
			AttrRecordID:   id,
			AttrRecordType: recordType,
			AttrRaw:        string(raw),
			AttrPK1:        expanded["PK1"],
			AttrSK1:        expanded["SK1"],
		},
	}
}

// RecordPartition returns the partition holding a record's own rows.
func RecordPartition(id string) string {
	return "REC#" + id
}

// TypePartition returns the secondary-index partition for a record type.
func TypePartition(recordType string) string {
	return "TYPE#" + recordType
}

// --- Files ---

// FileKey returns the key of one file row.
func FileKey(id, uri string) Key {
	return mustKey(DocumentFromRecord, map[string]string{"id": id, "uri": uri})
}

// FileItem builds a file row under its record's partition.
func FileItem(id string, f records.File) Item {
	attrs := map[string]any{
		AttrEntityType: EntityFile,
		AttrRecordID:   id,
		AttrURI:        f.URI,
	}
	if f.Mimetype != "" {
		attrs[AttrMimetype] = f.Mimetype
	}
	if len(f.Tags) > 0 {
		attrs[AttrTags] = f.Tags
	}
	return Item{Key: FileKey(id, f.URI), Attrs: attrs}
}

// SKPrefixFile is the sort-key prefix of file rows within a record partition.
const SKPrefixFile = "FILE#"

// --- XFromRecord direction (record → value) ---

// skPrefixByTable gives each XFromRecord table's sort-key prefix within the
// record partition.
var skPrefixByTable = map[Table]string{
	ScalarDataFromRecord:     "SCALAR#",
	StringDataFromRecord:     "STRING#",
	ScalarListDataFromRecord: "SCALARLIST#",
}

// SKPrefixFor returns the sort-key prefix of an XFromRecord table's rows.
func SKPrefixFor(t Table) string {
	return skPrefixByTable[t]
}

// DataFromRecordKey returns the key of a record's row for one named datum.
// ok is false for string lists, which have no XFromRecord side.
func DataFromRecordKey(kind records.Kind, id, name string) (Key, bool) {
	pair := PairFor(kind)
	if pair.DataFromRecord == "" {
		return Key{}, false
	}
	return mustKey(pair.DataFromRecord, map[string]string{"id": id, "name": name}), true
}

// DataFromRecordItem builds the record→value row for a datum: the value in
// full (the list, for scalar lists), plus units and tags. The kind tag is
// stored on the row so reclassification on re-ingest is detectable without
// probing every table pair.
func DataFromRecordItem(id, name string, d records.Datum) (Item, bool) {
	key, ok := DataFromRecordKey(d.Value.Kind(), id, name)
	if !ok {
		return Item{}, false
	}
	attrs := map[string]any{
		AttrEntityType: d.Value.Kind().String(),
		AttrRecordID:   id,
		AttrName:       name,
		AttrValue:      d.Value.Interface(),
	}
	if d.Units != "" {
		attrs[AttrUnits] = d.Units
	}
	if len(d.Tags) > 0 {
		attrs[AttrTags] = d.Tags
	}
	return Item{Key: key, Attrs: attrs}, true
}

// --- RecordFromX direction (value → record) ---

// DataPartition returns the partition of a RecordFromX table for one datum
// name.
func DataPartition(t Table, name string) string {
	expanded := mustExpand(t, map[string]string{"name": name})
	return expanded["PK"]
}

func recordFromDataKey(t Table, name, sortValue, id string) Key {
	return mustKey(t, map[string]string{"name": name, "value": sortValue, "id": id})
}

func recordFromDataItem(t Table, kind records.Kind, name, sortValue, id string, value any) Item {
	return Item{
		Key: recordFromDataKey(t, name, sortValue, id),
		Attrs: map[string]any{
			AttrEntityType: kind.String(),
			AttrRecordID:   id,
			AttrName:       name,
			AttrValue:      value,
		},
	}
}

// RecordFromScalarKey returns the value→record key for a scalar datum.
func RecordFromScalarKey(name string, value float64, id string) Key {
	return recordFromDataKey(RecordFromScalarData, name, EncodeScalar(value), id)
}

// RecordFromScalarItem builds the value→record row for a scalar datum.
func RecordFromScalarItem(name string, value float64, id, units string, tags []string) Item {
	item := recordFromDataItem(RecordFromScalarData, records.KindScalar,
		name, EncodeScalar(value), id, value)
	if units != "" {
		item.Attrs[AttrUnits] = units
	}
	if len(tags) > 0 {
		item.Attrs[AttrTags] = tags
	}
	return item
}

// RecordFromStringKey returns the value→record key for a string datum.
func RecordFromStringKey(name, value, id string) Key {
	return recordFromDataKey(RecordFromStringData, name, value, id)
}

// RecordFromStringItem builds the value→record row for a string datum.
func RecordFromStringItem(name, value, id, units string, tags []string) Item {
	item := recordFromDataItem(RecordFromStringData, records.KindString,
		name, value, id, value)
	if units != "" {
		item.Attrs[AttrUnits] = units
	}
	if len(tags) > 0 {
		item.Attrs[AttrTags] = tags
	}
	return item
}

// RecordFromScalarListMinKey returns the Min-table key for a scalar list.
func RecordFromScalarListMinKey(name string, min float64, id string) Key {
	return recordFromDataKey(RecordFromScalarListMin, name, EncodeScalar(min), id)
}

// RecordFromScalarListMinItem builds the Min-table row holding min(list).
func RecordFromScalarListMinItem(name string, min float64, id string) Item {
	return recordFromDataItem(RecordFromScalarListMin, records.KindScalarList,
		name, EncodeScalar(min), id, min)
}

// RecordFromScalarListMaxKey returns the Max-table key for a scalar list.
func RecordFromScalarListMaxKey(name string, max float64, id string) Key {
	return recordFromDataKey(RecordFromScalarListMax, name, EncodeScalar(max), id)
}

// RecordFromScalarListMaxItem builds the Max-table row holding max(list).
func RecordFromScalarListMaxItem(name string, max float64, id string) Item {
	return recordFromDataItem(RecordFromScalarListMax, records.KindScalarList,
		name, EncodeScalar(max), id, max)
}

// RecordFromStringListKey returns the per-element key for a string list.
func RecordFromStringListKey(name, element, id string) Key {
	return recordFromDataKey(RecordFromStringListData, name, element, id)
}

// RecordFromStringListItem builds one per-element row for a string list.
// Re-inserting the same element lands on the same key, so duplicates across
// calls collapse to one row.
func RecordFromStringListItem(name, element, id string) Item {
	return recordFromDataItem(RecordFromStringListData, records.KindStringList,
		name, element, id, element)
}

// --- Relationships ---

// ObjectFromSubjectKey returns the subject-side key of a triple.
func ObjectFromSubjectKey(rel records.Relationship) Key {
	return mustKey(ObjectFromSubject, map[string]string{
		"subject": rel.Subject, "predicate": rel.Predicate, "object": rel.Object,
	})
}

// SubjectFromObjectKey returns the object-side key of a triple.
func SubjectFromObjectKey(rel records.Relationship) Key {
	return mustKey(SubjectFromObject, map[string]string{
		"subject": rel.Subject, "predicate": rel.Predicate, "object": rel.Object,
	})
}

// RelationshipItems builds both mirrored rows for one triple. They hold the
// same data in different key order and must be written in one atomic unit.
func RelationshipItems(rel records.Relationship) (Item, Item) {
	attrs := func() map[string]any {
		return map[string]any{
			AttrEntityType: EntityRelationship,
			AttrSubjectID:  rel.Subject,
			AttrPredicate:  rel.Predicate,
			AttrObjectID:   rel.Object,
		}
	}
	objectSide := Item{Key: ObjectFromSubjectKey(rel), Attrs: attrs()}
	subjectSide := Item{Key: SubjectFromObjectKey(rel), Attrs: attrs()}
	return objectSide, subjectSide
}

// SubjectPartition returns the partition of all triples with this subject.
func SubjectPartition(subject string) string {
	return "SUBJ#" + subject
}

// ObjectPartition returns the partition of all triples with this object.
func ObjectPartition(object string) string {
	return "OBJ#" + object
}
