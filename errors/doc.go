/*
Package errors provides semantic error types for the recordstore storage layer.

Sentinel errors (ErrNotFound, ErrAlreadyExists, etc.) support errors.Is checks,
while the concrete types carry context about what failed:

	rec, err := store.GetRecord(ctx, "run_22")
	if errors.IsNotFound(err) {
	    // handle missing record
	}

Note that AlreadyExists has two very different roles in this codebase. On the
record row it is a real error surfaced to the caller (duplicate record id
without overwrite). On projection rows it is an expected outcome of the
conditional-insert discipline and is consumed inside the write path; it never
escapes from WriteDatum.
*/
package errors
