/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recordstore/datastore"
	rserrors "github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/schema"
)

// Store implements datastore.Backend over one DynamoDB table.
type Store struct {
	client *sdk.Client
	table  string
}

var _ datastore.Backend = (*Store)(nil)

const (
	indexByTypeName  = datastore.IndexByType
	tableWaitTimeout = 2 * time.Minute

	// maxBatchSize is the TransactWriteItems ceiling. Batches larger than
	// this fail before any traffic; callers split the work instead.
	maxBatchSize = 100
)

func marshalItem(item schema.Item) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item.Attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item attributes: %w", err)
	}
	av[schema.AttrPK] = &types.AttributeValueMemberS{Value: item.PK}
	av[schema.AttrSK] = &types.AttributeValueMemberS{Value: item.SK}
	return av, nil
}

func unmarshalItem(av map[string]types.AttributeValue) (schema.Item, error) {
	attrs := make(map[string]any, len(av))
	if err := attributevalue.UnmarshalMap(av, &attrs); err != nil {
		return schema.Item{}, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	item := schema.Item{Attrs: attrs}
	item.PK, _ = schema.Str(attrs[schema.AttrPK])
	item.SK, _ = schema.Str(attrs[schema.AttrSK])
	delete(attrs, schema.AttrPK)
	delete(attrs, schema.AttrSK)
	return item, nil
}

func keyMap(key schema.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		schema.AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		schema.AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}

// Put unconditionally writes one row.
func (s *Store) Put(ctx context.Context, item schema.Item) error {
	av, err := marshalItem(item)
	if err != nil {
		return err
	}
	if _, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.table,
		Item:      av,
	}); err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// PutIfAbsent writes one row only if its key slot is empty. An occupied slot
// is reported as created=false, not as an error.
func (s *Store) PutIfAbsent(ctx context.Context, item schema.Item) (bool, error) {
	av, err := marshalItem(item)
	if err != nil {
		return false, err
	}
	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &s.table,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return false, nil
		}
		return false, fmt.Errorf("conditional PutItem failed: %w", err)
	}
	return true, nil
}

// Get reads one row by exact key, returning nil when absent.
func (s *Store) Get(ctx context.Context, key schema.Key) (*schema.Item, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.table,
		Key:       keyMap(key),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem failed: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	item, err := unmarshalItem(out.Item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// queryInput builds the key condition for a partition lookup, against either
// the primary key or the type index.
func (s *Store) queryInput(q datastore.Query) (*sdk.QueryInput, error) {
	pkName, skName := schema.AttrPK, schema.AttrSK
	input := &sdk.QueryInput{TableName: &s.table}
	if q.Index != "" {
		if q.Index != indexByTypeName {
			return nil, rserrors.NewValidationError("index", "unknown index "+q.Index)
		}
		input.IndexName = aws.String(q.Index)
		pkName, skName = schema.AttrPK1, schema.AttrSK1
	}

	cond := fmt.Sprintf("%s = :pk", pkName)
	vals := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: q.Partition},
	}
	if q.Sort != nil {
		switch q.Sort.Op {
		case datastore.SortAll:
			// no sort condition
		case datastore.SortEq:
			cond += fmt.Sprintf(" AND %s = :sk", skName)
			vals[":sk"] = &types.AttributeValueMemberS{Value: q.Sort.Value}
		case datastore.SortBeginsWith:
			cond += fmt.Sprintf(" AND begins_with(%s, :sk)", skName)
			vals[":sk"] = &types.AttributeValueMemberS{Value: q.Sort.Value}
		case datastore.SortBetween:
			cond += fmt.Sprintf(" AND %s BETWEEN :lo AND :hi", skName)
			vals[":lo"] = &types.AttributeValueMemberS{Value: q.Sort.Value}
			vals[":hi"] = &types.AttributeValueMemberS{Value: q.Sort.Upper}
		case datastore.SortGte:
			cond += fmt.Sprintf(" AND %s >= :lo", skName)
			vals[":lo"] = &types.AttributeValueMemberS{Value: q.Sort.Value}
		case datastore.SortLte:
			cond += fmt.Sprintf(" AND %s <= :hi", skName)
			vals[":hi"] = &types.AttributeValueMemberS{Value: q.Sort.Value}
		default:
			return nil, rserrors.NewValidationError("sort", "unknown sort operator")
		}
	}
	input.KeyConditionExpression = &cond
	input.ExpressionAttributeValues = vals
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}
	return input, nil
}

// Query runs a single-partition lookup, following pagination to exhaustion.
func (s *Store) Query(ctx context.Context, q datastore.Query) ([]schema.Item, error) {
	var items []schema.Item
	err := s.QueryPages(ctx, q, func(page []schema.Item) (bool, error) {
		items = append(items, page...)
		return true, nil
	})
	return items, err
}

// QueryPages runs a single-partition lookup, delivering each page to the
// callback. The callback returns false to stop early.
func (s *Store) QueryPages(ctx context.Context, q datastore.Query, page func(items []schema.Item) (bool, error)) error {
	input, err := s.queryInput(q)
	if err != nil {
		return err
	}
	paginator := sdk.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("query error: %w", err)
		}
		items := make([]schema.Item, 0, len(out.Items))
		for _, av := range out.Items {
			item, err := unmarshalItem(av)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		cont, err := page(items)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// Scan walks the whole table, keeping rows of one entity type. Full-table
// cost; only brute-force queries use it.
func (s *Store) Scan(ctx context.Context, entityType string) ([]schema.Item, error) {
	input := &sdk.ScanInput{
		TableName:        &s.table,
		FilterExpression: aws.String("EntityType = :et"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":et": &types.AttributeValueMemberS{Value: entityType},
		},
	}
	var items []schema.Item
	paginator := sdk.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		for _, av := range out.Items {
			item, err := unmarshalItem(av)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	return items, nil
}

type batchOp struct {
	put *schema.Item
	del *schema.Key
}

type batch struct {
	store *Store
	ops   []batchOp
}

// NewBatch starts an atomic batch backed by TransactWriteItems.
func (s *Store) NewBatch() datastore.Batch {
	return &batch{store: s}
}

func (b *batch) Put(item schema.Item) {
	b.ops = append(b.ops, batchOp{put: &item})
}

func (b *batch) Delete(key schema.Key) {
	b.ops = append(b.ops, batchOp{del: &key})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit applies every statement in one transaction. The transaction API
// caps the statement count, so oversized batches fail before any traffic.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > maxBatchSize {
		return rserrors.NewBatchTooLargeError(len(b.ops), maxBatchSize)
	}

	writes := make([]types.TransactWriteItem, 0, len(b.ops))
	for _, op := range b.ops {
		if op.put != nil {
			av, err := marshalItem(*op.put)
			if err != nil {
				return err
			}
			writes = append(writes, types.TransactWriteItem{
				Put: &types.Put{TableName: &b.store.table, Item: av},
			})
		} else {
			writes = append(writes, types.TransactWriteItem{
				Delete: &types.Delete{TableName: &b.store.table, Key: keyMap(*op.del)},
			})
		}
	}

	if _, err := b.store.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{
		TransactItems: writes,
	}); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	b.ops = nil
	return nil
}
