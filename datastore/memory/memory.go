/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-memory datastore.Backend with the same
// observable semantics as the DynamoDB backend: byte-ordered sort keys,
// conditional inserts, and all-or-nothing batches. Used by unit tests and
// for local experimentation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/schema"
)

// maxBatchSize mirrors the DynamoDB transaction ceiling, so a batch that
// passes here cannot fail on size in production.
const maxBatchSize = 100

// Store is an in-memory Backend. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	rows map[string]map[string]schema.Item

	putError    error
	commitError error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{rows: make(map[string]map[string]schema.Item)}
}

// WithPutError makes subsequent single-row writes fail with err.
func (s *Store) WithPutError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putError = err
	return s
}

// WithCommitError makes subsequent batch commits fail with err without
// applying anything.
func (s *Store) WithCommitError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitError = err
	return s
}

// Len returns the total number of rows. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, part := range s.rows {
		n += len(part)
	}
	return n
}

func copyItem(item schema.Item) schema.Item {
	attrs := make(map[string]any, len(item.Attrs))
	for k, v := range item.Attrs {
		attrs[k] = v
	}
	return schema.Item{Key: item.Key, Attrs: attrs}
}

func (s *Store) putLocked(item schema.Item) {
	part, ok := s.rows[item.PK]
	if !ok {
		part = make(map[string]schema.Item)
		s.rows[item.PK] = part
	}
	part[item.SK] = copyItem(item)
}

func (s *Store) deleteLocked(key schema.Key) {
	if part, ok := s.rows[key.PK]; ok {
		delete(part, key.SK)
		if len(part) == 0 {
			delete(s.rows, key.PK)
		}
	}
}

// Put unconditionally writes one row.
func (s *Store) Put(ctx context.Context, item schema.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putError != nil {
		return s.putError
	}
	s.putLocked(item)
	return nil
}

// PutIfAbsent writes one row only if its key slot is empty.
func (s *Store) PutIfAbsent(ctx context.Context, item schema.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putError != nil {
		return false, s.putError
	}
	if part, ok := s.rows[item.PK]; ok {
		if _, exists := part[item.SK]; exists {
			return false, nil
		}
	}
	s.putLocked(item)
	return true, nil
}

// Get reads one row by exact key.
func (s *Store) Get(ctx context.Context, key schema.Key) (*schema.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if part, ok := s.rows[key.PK]; ok {
		if item, exists := part[key.SK]; exists {
			out := copyItem(item)
			return &out, nil
		}
	}
	return nil, nil
}

func matchSort(sk string, cond *datastore.SortCond) bool {
	if cond == nil {
		return true
	}
	switch cond.Op {
	case datastore.SortAll:
		return true
	case datastore.SortEq:
		return sk == cond.Value
	case datastore.SortBeginsWith:
		return strings.HasPrefix(sk, cond.Value)
	case datastore.SortBetween:
		return sk >= cond.Value && sk <= cond.Upper
	case datastore.SortGte:
		return sk >= cond.Value
	case datastore.SortLte:
		return sk <= cond.Value
	default:
		return false
	}
}

func (s *Store) collect(q datastore.Query) []schema.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schema.Item
	if q.Index == datastore.IndexByType {
		// Secondary index: match on the PK1/SK1 attributes.
		for _, part := range s.rows {
			for _, item := range part {
				pk1, _ := schema.Str(item.Attrs[schema.AttrPK1])
				if pk1 != q.Partition {
					continue
				}
				sk1, _ := schema.Str(item.Attrs[schema.AttrSK1])
				if matchSort(sk1, q.Sort) {
					out = append(out, copyItem(item))
				}
			}
		}
		sort.Slice(out, func(i, j int) bool {
			a, _ := schema.Str(out[i].Attrs[schema.AttrSK1])
			b, _ := schema.Str(out[j].Attrs[schema.AttrSK1])
			return a < b
		})
	} else {
		part := s.rows[q.Partition]
		sks := make([]string, 0, len(part))
		for sk := range part {
			if matchSort(sk, q.Sort) {
				sks = append(sks, sk)
			}
		}
		sort.Strings(sks)
		for _, sk := range sks {
			out = append(out, copyItem(part[sk]))
		}
	}
	if q.Limit > 0 && int32(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Query runs a single-partition lookup.
func (s *Store) Query(ctx context.Context, q datastore.Query) ([]schema.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.collect(q), nil
}

// QueryPages runs a single-partition lookup, delivering results in pages of
// q.Limit rows (one page when no limit is set).
func (s *Store) QueryPages(ctx context.Context, q datastore.Query, page func(items []schema.Item) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	all := s.collect(datastore.Query{Index: q.Index, Partition: q.Partition, Sort: q.Sort})
	size := int(q.Limit)
	if size <= 0 {
		size = len(all)
	}
	for start := 0; start < len(all); start += size {
		end := start + size
		if end > len(all) {
			end = len(all)
		}
		cont, err := page(all[start:end])
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	if len(all) == 0 {
		_, err := page(nil)
		return err
	}
	return nil
}

// Scan reads every row with the given EntityType attribute.
func (s *Store) Scan(ctx context.Context, entityType string) ([]schema.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schema.Item
	for _, part := range s.rows {
		for _, item := range part {
			if et, _ := schema.Str(item.Attrs[schema.AttrEntityType]); et == entityType {
				out = append(out, copyItem(item))
			}
		}
	}
	return out, nil
}

type batchOp struct {
	del  bool
	item schema.Item
	key  schema.Key
}

type batch struct {
	store *Store
	ops   []batchOp
}

// NewBatch starts an empty atomic batch.
func (s *Store) NewBatch() datastore.Batch {
	return &batch{store: s}
}

func (b *batch) Put(item schema.Item) {
	b.ops = append(b.ops, batchOp{item: copyItem(item)})
}

func (b *batch) Delete(key schema.Key) {
	b.ops = append(b.ops, batchOp{del: true, key: key})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit applies every statement under one lock, so no reader observes a
// partially applied batch.
func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b.ops) > maxBatchSize {
		return errors.NewBatchTooLargeError(len(b.ops), maxBatchSize)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	if b.store.commitError != nil {
		return b.store.commitError
	}
	for _, op := range b.ops {
		if op.del {
			b.store.deleteLocked(op.key)
		} else {
			b.store.putLocked(op.item)
		}
	}
	b.ops = nil
	return nil
}
