/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package ddb provides the DynamoDB implementation of datastore.Backend.

Every projection row lives in one table keyed by PK/SK strings; the type
index (GSI1, keyed PK1/SK1) serves lookups by record type. The backend maps:

  - conditional inserts onto PutItem with attribute_not_exists(PK),
    reporting an occupied slot as created=false rather than an error
  - partition lookups onto Query with key-condition expressions built from
    the sort condition (equality, prefix, bounded ranges)
  - atomic batches onto TransactWriteItems, so a record deletion either
    removes every projection row or none of them

Credentials come from AWS_ACCESS_KEY / AWS_SECRET_KEY, optionally loaded
from a .env file, and are validated when the client is created. Point
Config.Endpoint at DynamoDB Local to run against a local instance;
EnsureTable creates the table and index on first use.
*/
package ddb
