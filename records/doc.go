/*
Package records holds the document model: Records with named, typed data
entries and file attachments, and Relationships between record ids.

A datum's value is a tagged union (Value) over the four shapes the storage
layer indexes: scalar, string, scalar list, string list. Classification from
arbitrary decoded JSON happens once, at the write boundary, via a Classifier;
the default treats empty lists as scalar lists.

The JSON forms here are the interchange contract with the converters and the
web UI:

	{
	  "id": "run_22", "type": "run",
	  "data": {"temp": {"value": 98.6, "units": "F", "tags": ["output"]}},
	  "files": [{"uri": "out.png", "mimetype": "image/png"}],
	  "user_defined": {"notes": "..."}
	}
*/
package records
