/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import "encoding/json"

// Key is the physical primary key of one row: partition key plus sort key.
type Key struct {
	PK string
	SK string
}

// Item is one physical row: its key and its non-key attributes.
type Item struct {
	Key
	Attrs map[string]any
}

// Attribute names shared by every row. Values are plain Go values; backends
// convert to their native representation.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrPK1        = "PK1"
	AttrSK1        = "SK1"
	AttrEntityType = "EntityType"
	AttrRecordID   = "RecordID"
	AttrRecordType = "Type"
	AttrRaw        = "Raw"
	AttrName       = "Name"
	AttrValue      = "Value"
	AttrUnits      = "Units"
	AttrTags       = "Tags"
	AttrURI        = "URI"
	AttrMimetype   = "Mimetype"
	AttrSubjectID  = "SubjectID"
	AttrPredicate  = "Predicate"
	AttrObjectID   = "ObjectID"
)

// EntityType values.
const (
	EntityRecord       = "record"
	EntityFile         = "file"
	EntityRelationship = "relationship"
)

// Float coerces an attribute value to float64. Backends may hand numbers
// back as float64 or json.Number depending on how the row was decoded.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Str coerces an attribute value to a string.
func Str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Floats coerces an attribute value to a scalar slice, accepting both the
// typed form written by this package and the []any form decoders produce.
func Floats(v any) ([]float64, bool) {
	switch t := v.(type) {
	case []float64:
		return t, true
	case []any:
		out := make([]float64, len(t))
		for i, el := range t {
			f, ok := Float(el)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

// Strings coerces an attribute value to a string slice.
func Strings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, len(t))
		for i, el := range t {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
