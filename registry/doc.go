/*
Package registry maps projection tables to the key templates that shape their
physical rows.

Every logical projection table in the schema (the record store, the four
datum table pairs, the mirrored relationship tables) is registered here with
a template per physical key field. Templates use {field} macros:

	registry.RegisterKeyMap("RecordFromScalarData", map[string]string{
	    "PK": "SCALAR#{name}",
	    "SK": "{value}\x1f{id}",
	})

The schema package performs the registrations and calls Expand to build keys;
nothing else should need to touch the registry directly.
*/
package registry
