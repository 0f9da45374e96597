/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package recordstore persists heterogeneous record documents and the
relationships between them, cross-populating every write into denormalized
projection tables so each supported query pattern is a single-partition
lookup.

A Record is an id, a type, named data entries (scalar, string, scalar list,
or string list), file attachments, and an opaque user-defined blob. The raw
JSON document is authoritative; every other row is a derived cache keyed
back to the record id. Relationships are subject-predicate-object triples
mirrored into two tables so traversal from either end is one partition read.

Basic Usage:

	backend, _ := ddb.New(ctx, ddb.Config{Table: "records", Region: "us-west-2"})
	store := recordstore.New(backend)

	rec := records.New("run_22", "run")
	rec.SetData("temperature", 98.6)
	err := store.PutRecord(ctx, rec, false)

	ids, _ := store.DataQuery(ctx, datastore.ScalarEquals("temperature", 98.6))

Writes fan out: PutRecord stores the document, one row per datum on each
side of its table pair, and one row per file. Deletes reverse the fan-out in
a single atomic batch, so no query path can observe a half-deleted record.
The in-memory backend in datastore/memory has the same observable semantics
as the DynamoDB backend and serves tests and local experiments.
*/
package recordstore
