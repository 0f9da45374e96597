/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"

	"github.com/suparena/recordstore/records"
	"github.com/suparena/recordstore/registry"
)

// Table names the logical projection tables. Physically they all live in one
// wide-column table, distinguished by key prefix; the registry holds each
// table's key templates.
type Table string

const (
	// RecordTable stores the raw form of the record. Authoritative; every
	// other table is a derived cache keyed back to the record id.
	RecordTable Table = "Record"

	// DocumentFromRecord is the query table for finding files given records.
	DocumentFromRecord Table = "DocumentFromRecord"

	// ScalarDataFromRecord finds a scalar-valued data entry given record id.
	ScalarDataFromRecord Table = "ScalarDataFromRecord"

	// StringDataFromRecord finds a string-valued data entry given record id.
	StringDataFromRecord Table = "StringDataFromRecord"

	// ScalarListDataFromRecord finds a scalar-list data entry given record id.
	ScalarListDataFromRecord Table = "ScalarListDataFromRecord"

	// RecordFromScalarData finds records given scalar criteria.
	RecordFromScalarData Table = "RecordFromScalarData"

	// RecordFromStringData finds records given string criteria
	// (ex, "version"="1.2.3").
	RecordFromStringData Table = "RecordFromStringData"

	// RecordFromScalarListMin holds the smallest element of each scalar list.
	// Together with the Max table it answers range queries against lists:
	// intersection tests against [min, max], not membership tests.
	RecordFromScalarListMin Table = "RecordFromScalarListMin"

	// RecordFromScalarListMax holds the largest element of each scalar list.
	RecordFromScalarListMax Table = "RecordFromScalarListMax"

	// RecordFromStringListData finds records given string-list criteria, one
	// row per list element. It has no partner table: a record's own
	// string-list data is read from the raw document, where order and
	// duplicates survive.
	RecordFromStringListData Table = "RecordFromStringListData"

	// ObjectFromSubject finds objects given subject (plus optionally
	// predicate). Subject/object is triples terminology: task_1 contains
	// run_22.
	ObjectFromSubject Table = "ObjectFromSubject"

	// SubjectFromObject finds subjects given object. Exact mirror of
	// ObjectFromSubject, read in the other key order; neither is
	// authoritative over the other.
	SubjectFromObject Table = "SubjectFromObject"
)

// Sep separates sort-key components. Validation upstream keeps it (and all
// other control bytes) out of ids, names, predicates, and string values.
const Sep = "\x1f"

// SepUpper is the first byte greater than Sep. Appending it to a component
// prefix yields a bound above every Sep-joined continuation of that prefix,
// which makes closed upper bounds on composite keys expressible.
const SepUpper = "\x20"

func init() {
	registry.RegisterKeyMap(string(RecordTable), map[string]string{
		"PK": "REC#{id}", "SK": "REC#{id}",
		"PK1": "TYPE#{type}", "SK1": "REC#{id}",
	})
	registry.RegisterKeyMap(string(DocumentFromRecord), map[string]string{
		"PK": "REC#{id}", "SK": "FILE#{uri}",
	})
	registry.RegisterKeyMap(string(ScalarDataFromRecord), map[string]string{
		"PK": "REC#{id}", "SK": "SCALAR#{name}",
	})
	registry.RegisterKeyMap(string(StringDataFromRecord), map[string]string{
		"PK": "REC#{id}", "SK": "STRING#{name}",
	})
	registry.RegisterKeyMap(string(ScalarListDataFromRecord), map[string]string{
		"PK": "REC#{id}", "SK": "SCALARLIST#{name}",
	})
	registry.RegisterKeyMap(string(RecordFromScalarData), map[string]string{
		"PK": "SCALAR#{name}", "SK": "{value}" + Sep + "{id}",
	})
	registry.RegisterKeyMap(string(RecordFromStringData), map[string]string{
		"PK": "STRING#{name}", "SK": "{value}" + Sep + "{id}",
	})
	registry.RegisterKeyMap(string(RecordFromScalarListMin), map[string]string{
		"PK": "SCALARLISTMIN#{name}", "SK": "{value}" + Sep + "{id}",
	})
	registry.RegisterKeyMap(string(RecordFromScalarListMax), map[string]string{
		"PK": "SCALARLISTMAX#{name}", "SK": "{value}" + Sep + "{id}",
	})
	registry.RegisterKeyMap(string(RecordFromStringListData), map[string]string{
		"PK": "STRINGLIST#{name}", "SK": "{value}" + Sep + "{id}",
	})
	registry.RegisterKeyMap(string(ObjectFromSubject), map[string]string{
		"PK": "SUBJ#{subject}", "SK": "{predicate}" + Sep + "{object}",
	})
	registry.RegisterKeyMap(string(SubjectFromObject), map[string]string{
		"PK": "OBJ#{object}", "SK": "{predicate}" + Sep + "{subject}",
	})
}

// Pair is the set of projection tables serving one value kind.
type Pair struct {
	Kind records.Kind

	// DataFromRecord is the record→value direction. Empty for string lists,
	// which are read back from the raw document instead.
	DataFromRecord Table

	// RecordFromData is the value→record direction. Two tables (Min, Max)
	// for scalar lists, one otherwise.
	RecordFromData []Table
}

// PairFor returns the table pair a value kind is projected into. The pair is
// a function of the kind alone; classification already happened when the
// value was tagged.
func PairFor(kind records.Kind) Pair {
	switch kind {
	case records.KindScalar:
		return Pair{Kind: kind,
			DataFromRecord: ScalarDataFromRecord,
			RecordFromData: []Table{RecordFromScalarData}}
	case records.KindString:
		return Pair{Kind: kind,
			DataFromRecord: StringDataFromRecord,
			RecordFromData: []Table{RecordFromStringData}}
	case records.KindScalarList:
		return Pair{Kind: kind,
			DataFromRecord: ScalarListDataFromRecord,
			RecordFromData: []Table{RecordFromScalarListMin, RecordFromScalarListMax}}
	case records.KindStringList:
		return Pair{Kind: kind,
			RecordFromData: []Table{RecordFromStringListData}}
	default:
		panic(fmt.Sprintf("schema: no table pair for kind %v", kind))
	}
}

func mustExpand(t Table, fields map[string]string) map[string]string {
	expanded, err := registry.Expand(string(t), fields)
	if err != nil {
		panic(fmt.Sprintf("schema: table %s not registered: %v", t, err))
	}
	return expanded
}

func mustKey(t Table, fields map[string]string) Key {
	expanded := mustExpand(t, fields)
	return Key{PK: expanded["PK"], SK: expanded["SK"]}
}
