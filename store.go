/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/records"
	"github.com/suparena/recordstore/schema"
)

// Store is the cross-population engine: it projects every logical write (a
// record, one of its data entries, a relationship) into the physical tables
// that make each supported query a single-partition lookup, and it mirrors
// the same fan-out on deletion. It works against any datastore.Backend.
type Store struct {
	backend    datastore.Backend
	classifier records.Classifier
}

var _ datastore.DataStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClassifier overrides the value classifier, e.g. to store empty lists
// as string lists instead of the default scalar-list policy.
func WithClassifier(c records.Classifier) Option {
	return func(s *Store) { s.classifier = c }
}

// New creates a Store over the given backend.
func New(backend datastore.Backend, opts ...Option) *Store {
	s := &Store{backend: backend, classifier: records.DefaultClassifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classifier returns the store's value classifier.
func (s *Store) Classifier() records.Classifier {
	return s.classifier
}

// PutRecord persists the record's raw document and cross-populates the data
// and file projections. Without overwrite a duplicate record id is an
// AlreadyExists error; the projections of the existing record are left
// untouched in that case.
//
// The fan-out is a sequence of independent writes, not an atomic batch:
// a concurrent reader may observe some projections of a record before
// others. Callers needing stricter guarantees batch at a higher level.
func (s *Store) PutRecord(ctx context.Context, rec *records.Record, overwrite bool) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	raw, err := rec.Raw()
	if err != nil {
		return fmt.Errorf("failed to serialize record %q: %w", rec.ID, err)
	}

	item := schema.RecordItem(rec.ID, rec.Type, raw)
	if overwrite {
		if err := s.backend.Put(ctx, item); err != nil {
			return fmt.Errorf("failed to store record %q: %w", rec.ID, err)
		}
	} else {
		created, err := s.backend.PutIfAbsent(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to store record %q: %w", rec.ID, err)
		}
		if !created {
			return errors.NewAlreadyExistsError("record", rec.ID)
		}
	}

	for name, datum := range rec.Data {
		if err := s.WriteDatum(ctx, rec.ID, name, datum, overwrite); err != nil {
			return err
		}
	}
	for _, f := range rec.Files {
		if err := s.putFile(ctx, rec.ID, f, overwrite); err != nil {
			return err
		}
	}
	return nil
}

// PutRecords ingests records one after another.
func (s *Store) PutRecords(ctx context.Context, recs []*records.Record, overwrite bool) error {
	for _, rec := range recs {
		if err := s.PutRecord(ctx, rec, overwrite); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) putFile(ctx context.Context, id string, f records.File, overwrite bool) error {
	item := schema.FileItem(id, f)
	if overwrite {
		if err := s.backend.Put(ctx, item); err != nil {
			return fmt.Errorf("failed to store file %q for record %q: %w", f.URI, id, err)
		}
		return nil
	}
	// AlreadyPresent is fine; re-ingesting the same attachment is a no-op.
	if _, err := s.backend.PutIfAbsent(ctx, item); err != nil {
		return fmt.Errorf("failed to store file %q for record %q: %w", f.URI, id, err)
	}
	return nil
}

// GetRecord returns the full raw document for one id.
func (s *Store) GetRecord(ctx context.Context, id string) (*records.Record, error) {
	item, err := s.backend.Get(ctx, schema.RecordKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read record %q: %w", id, err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("record", id)
	}
	raw, ok := schema.Str(item.Attrs[schema.AttrRaw])
	if !ok {
		return nil, fmt.Errorf("record %q has no raw document", id)
	}
	rec, err := records.FromRaw([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse record %q: %w", id, err)
	}
	return rec, nil
}

// GetRecords returns the documents for the given ids, skipping missing ones.
func (s *Store) GetRecords(ctx context.Context, ids []string) ([]*records.Record, error) {
	out := make([]*records.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRecord(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// RecordIDsOfType returns ids of all records of one type, via the type
// index.
func (s *Store) RecordIDsOfType(ctx context.Context, recordType string) ([]string, error) {
	items, err := s.backend.Query(ctx, datastore.Query{
		Index:     datastore.IndexByType,
		Partition: schema.TypePartition(recordType),
	})
	if err != nil {
		return nil, fmt.Errorf("type query for %q failed: %w", recordType, err)
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if id, ok := schema.Str(item.Attrs[schema.AttrRecordID]); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// StreamRecordsOfType streams full records of one type, page by page.
func (s *Store) StreamRecordsOfType(ctx context.Context, recordType string, opts ...datastore.StreamOption) <-chan datastore.StreamResult {
	options := datastore.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	ch := make(chan datastore.StreamResult, options.BufferSize)

	send := func(res datastore.StreamResult) bool {
		select {
		case ch <- res:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)
		q := datastore.Query{
			Index:     datastore.IndexByType,
			Partition: schema.TypePartition(recordType),
			Limit:     options.PageSize,
		}
		err := s.backend.QueryPages(ctx, q, func(items []schema.Item) (bool, error) {
			for _, item := range items {
				raw, ok := schema.Str(item.Attrs[schema.AttrRaw])
				if !ok {
					continue
				}
				rec, err := records.FromRaw([]byte(raw))
				if err != nil {
					return false, err
				}
				if !send(datastore.StreamResult{Record: rec}) {
					return false, nil
				}
			}
			return true, nil
		})
		if err != nil {
			send(datastore.StreamResult{Err: err})
		}
	}()
	return ch
}

// FilesFor returns a record's file attachments from the file projection.
func (s *Store) FilesFor(ctx context.Context, id string) ([]records.File, error) {
	items, err := s.backend.Query(ctx, datastore.Query{
		Partition: schema.RecordPartition(id),
		Sort:      datastore.SortPrefix(schema.SKPrefixFile),
	})
	if err != nil {
		return nil, fmt.Errorf("file query for record %q failed: %w", id, err)
	}
	files := make([]records.File, 0, len(items))
	for _, item := range items {
		f := records.File{}
		f.URI, _ = schema.Str(item.Attrs[schema.AttrURI])
		f.Mimetype, _ = schema.Str(item.Attrs[schema.AttrMimetype])
		f.Tags, _ = schema.Strings(item.Attrs[schema.AttrTags])
		files = append(files, f)
	}
	return files, nil
}

// RecordIDsWithFileURI returns ids of records with a file whose uri matches
// the pattern; % is a wildcard. Brute force: this walks every file row, so
// treat it as a maintenance query, not a hot path.
func (s *Store) RecordIDsWithFileURI(ctx context.Context, uriPattern string) ([]string, error) {
	items, err := s.backend.Scan(ctx, schema.EntityFile)
	if err != nil {
		return nil, fmt.Errorf("file scan failed: %w", err)
	}
	seen := make(map[string]bool)
	var ids []string
	for _, item := range items {
		uri, _ := schema.Str(item.Attrs[schema.AttrURI])
		if !matchURIPattern(uri, uriPattern) {
			continue
		}
		id, _ := schema.Str(item.Attrs[schema.AttrRecordID])
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// matchURIPattern matches a uri against a pattern where % matches any run
// of characters (including none).
func matchURIPattern(uri, pattern string) bool {
	if !strings.Contains(pattern, "%") {
		return uri == pattern
	}
	parts := strings.Split(pattern, "%")
	if !strings.HasPrefix(uri, parts[0]) {
		return false
	}
	rest := uri[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, mid := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, mid)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(mid):]
	}
	return strings.HasSuffix(rest, last)
}
