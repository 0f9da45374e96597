/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/recordstore/schema"
)

// IndexByType is the secondary index serving record-type lookups.
const IndexByType = "GSI1"

// SortOp is the comparison applied to the sort key of a Query.
type SortOp int

const (
	// SortAll matches every row in the partition.
	SortAll SortOp = iota
	// SortEq matches one exact sort key.
	SortEq
	// SortBeginsWith matches rows whose sort key starts with Value.
	SortBeginsWith
	// SortBetween matches Value <= SK <= Upper.
	SortBetween
	// SortGte matches SK >= Value.
	SortGte
	// SortLte matches SK <= Value.
	SortLte
)

// SortCond is a sort-key condition. The zero value matches the whole
// partition.
type SortCond struct {
	Op    SortOp
	Value string
	Upper string
}

// SortEquals matches one exact sort key.
func SortEquals(v string) *SortCond { return &SortCond{Op: SortEq, Value: v} }

// SortPrefix matches sort keys beginning with v.
func SortPrefix(v string) *SortCond { return &SortCond{Op: SortBeginsWith, Value: v} }

// SortRange matches sort keys in [lo, hi].
func SortRange(lo, hi string) *SortCond { return &SortCond{Op: SortBetween, Value: lo, Upper: hi} }

// SortMin matches sort keys >= lo.
func SortMin(lo string) *SortCond { return &SortCond{Op: SortGte, Value: lo} }

// SortMax matches sort keys <= hi.
func SortMax(hi string) *SortCond { return &SortCond{Op: SortLte, Value: hi} }

// Query is a single-partition lookup: one partition key, an optional
// sort-key condition, optionally against a secondary index.
type Query struct {
	// Index selects a secondary index; empty means the primary key.
	Index string
	// Partition is the exact partition-key value.
	Partition string
	// Sort restricts the sort key; nil matches the whole partition.
	Sort *SortCond
	// Limit caps the number of rows returned; 0 means no cap.
	Limit int32
}

// Backend is the slice of a wide-column store this design depends on:
// upserts, conditional single-row inserts, single-partition range queries,
// and atomic multi-statement batches. Anything a projection needs beyond
// these belongs in the projection design, not here.
type Backend interface {
	// Put unconditionally writes one row.
	Put(ctx context.Context, item schema.Item) error

	// PutIfAbsent writes one row only if its key slot is empty. It returns
	// false, nil when the slot was already occupied; that outcome is not an
	// error at this layer.
	PutIfAbsent(ctx context.Context, item schema.Item) (bool, error)

	// Get reads one row by exact key, returning nil when absent.
	Get(ctx context.Context, key schema.Key) (*schema.Item, error)

	// Query runs a single-partition lookup, transparently draining pages.
	Query(ctx context.Context, q Query) ([]schema.Item, error)

	// QueryPages runs a single-partition lookup one backend page at a time.
	// The callback returns false to stop early.
	QueryPages(ctx context.Context, q Query, page func(items []schema.Item) (bool, error)) error

	// Scan reads every row with the given EntityType attribute. Full-table
	// scan; only the brute-force file-uri search uses it.
	Scan(ctx context.Context, entityType string) ([]schema.Item, error)

	// NewBatch starts an empty atomic batch.
	NewBatch() Batch
}

// Batch collects puts and deletes for a single all-or-nothing commit. After
// Commit returns, either every statement is applied or none is.
type Batch interface {
	Put(item schema.Item)
	Delete(key schema.Key)
	Len() int
	Commit(ctx context.Context) error
}
