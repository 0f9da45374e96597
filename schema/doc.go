/*
Package schema defines the projection tables and their key shapes.

The storage engine keeps one authoritative row per record plus a family of
denormalized query tables, one per supported access pattern: four pairs of
data tables (scalar, string, scalar list, string list; each pair readable by
record or by value), a file table, and two mirrored relationship tables.
Everything shares one physical wide-column table; a projection "table" is a
key-prefix family over (PK, SK).

Two conventions make range queries work against string sort keys:

  - scalar values are embedded via EncodeScalar, an order-preserving
    fixed-width encoding of IEEE-754 doubles;
  - composite sort keys join components with Sep (0x1F), which model
    validation keeps out of user strings.

Scalar lists get a lossy value→record projection: one Min row and one Max row
per list, so a range query answers "does [min, max] intersect the range",
not "does the list contain a value in the range". String lists project one
row per element and have no record→value side at all; reads of a record's
own string lists go through the raw document.
*/
package schema
