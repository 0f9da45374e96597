/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/recordstore/records"
)

// DataStore is the full operation surface of the record store: document
// persistence, per-datum cross-population, relationship linking, and the
// fixed query patterns the projection tables were shaped for.
type DataStore interface {
	// PutRecord persists the record document and cross-populates every
	// projection. Without overwrite, a duplicate record id is an
	// AlreadyExists error. The fan-out is not atomic (see DeleteRecord for
	// the atomic path).
	PutRecord(ctx context.Context, rec *records.Record, overwrite bool) error

	// PutRecords ingests records one after another with PutRecord semantics.
	PutRecords(ctx context.Context, recs []*records.Record, overwrite bool) error

	// GetRecord returns the full document, or a NotFound error.
	GetRecord(ctx context.Context, id string) (*records.Record, error)

	// GetRecords returns the documents for each id, skipping missing ones.
	GetRecords(ctx context.Context, ids []string) ([]*records.Record, error)

	// WriteDatum cross-populates one named datum into its table pair.
	// AlreadyPresent outcomes on conditional inserts are success.
	WriteDatum(ctx context.Context, id, name string, d records.Datum, overwrite bool) error

	// DeleteRecord removes the record and every projection row that refers
	// to it (data pairs, files, both directions of every relationship) in
	// one atomic batch.
	DeleteRecord(ctx context.Context, id string) error

	// DeleteRecords removes several records in one atomic batch.
	DeleteRecords(ctx context.Context, ids ...string) error

	// Link inserts the relationship triple into both mirrored tables in one
	// atomic unit.
	Link(ctx context.Context, subject, predicate, object string) error

	// ObjectsOf returns the triples whose subject is the given id,
	// optionally restricted to one predicate.
	ObjectsOf(ctx context.Context, subject, predicate string) ([]records.Relationship, error)

	// SubjectsOf returns the triples whose object is the given id,
	// optionally restricted to one predicate.
	SubjectsOf(ctx context.Context, object, predicate string) ([]records.Relationship, error)

	// DataQuery returns ids of records whose data satisfy every criterion.
	DataQuery(ctx context.Context, criteria ...Criterion) ([]string, error)

	// DataForRecords returns a subset of each record's data, keyed by record
	// id then datum name.
	DataForRecords(ctx context.Context, ids, names []string) (map[string]map[string]records.Datum, error)

	// RecordIDsOfType returns the ids of all records of one type.
	RecordIDsOfType(ctx context.Context, recordType string) ([]string, error)

	// FilesFor returns a record's file attachments.
	FilesFor(ctx context.Context, id string) ([]records.File, error)

	// RecordIDsWithFileURI returns ids of records with a file whose uri
	// matches the pattern; % is a wildcard.
	RecordIDsWithFileURI(ctx context.Context, uriPattern string) ([]string, error)

	// StreamRecordsOfType streams full records of one type.
	StreamRecordsOfType(ctx context.Context, recordType string, opts ...StreamOption) <-chan StreamResult
}
