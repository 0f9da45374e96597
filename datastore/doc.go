/*
Package datastore defines the contracts of the storage layer.

Backend is the narrow slice of a wide-column store the projection design
needs: upserts, conditional single-row inserts, single-partition range
queries, and atomic batches. Implementations:

  - ddb: AWS DynamoDB (production)
  - memory: deterministic in-memory store (tests, local use)

DataStore is the operation surface built on top of a Backend by the
recordstore package: record persistence, datum cross-population, relationship
linking, and the fixed query patterns.
*/
package datastore
