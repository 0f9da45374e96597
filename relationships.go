/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"context"
	"fmt"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/records"
	"github.com/suparena/recordstore/schema"
)

// Link inserts a subject-predicate-object triple. The two mirrored rows go
// in as one atomic batch so neither table can hold a triple the other lacks.
// Re-linking an existing triple overwrites the same two rows and is a no-op.
func (s *Store) Link(ctx context.Context, subject, predicate, object string) error {
	rel := records.Relationship{Subject: subject, Predicate: predicate, Object: object}
	if err := rel.Validate(); err != nil {
		return err
	}
	objectSide, subjectSide := schema.RelationshipItems(rel)
	batch := s.backend.NewBatch()
	batch.Put(objectSide)
	batch.Put(subjectSide)
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to link %q -%s-> %q: %w", subject, predicate, object, err)
	}
	return nil
}

// ObjectsOf returns the triples whose subject is the given id. A non-empty
// predicate narrows the read to one predicate's rows.
func (s *Store) ObjectsOf(ctx context.Context, subject, predicate string) ([]records.Relationship, error) {
	return s.relationshipQuery(ctx, schema.SubjectPartition(subject), predicate)
}

// SubjectsOf returns the triples whose object is the given id. Served by the
// mirror table; same cost as ObjectsOf.
func (s *Store) SubjectsOf(ctx context.Context, object, predicate string) ([]records.Relationship, error) {
	return s.relationshipQuery(ctx, schema.ObjectPartition(object), predicate)
}

func (s *Store) relationshipQuery(ctx context.Context, partition, predicate string) ([]records.Relationship, error) {
	if predicate != "" && containsControlString(predicate) {
		return nil, errors.NewValidationError("predicate", "predicate must not contain control characters")
	}
	q := datastore.Query{Partition: partition}
	if predicate != "" {
		q.Sort = datastore.SortPrefix(predicate + schema.Sep)
	}
	items, err := s.backend.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("relationship query on %q failed: %w", partition, err)
	}
	rels := make([]records.Relationship, 0, len(items))
	for _, item := range items {
		var rel records.Relationship
		rel.Subject, _ = schema.Str(item.Attrs[schema.AttrSubjectID])
		rel.Predicate, _ = schema.Str(item.Attrs[schema.AttrPredicate])
		rel.Object, _ = schema.Str(item.Attrs[schema.AttrObjectID])
		rels = append(rels, rel)
	}
	return rels, nil
}

func containsControlString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 {
			return true
		}
	}
	return false
}
