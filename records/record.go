/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	"encoding/json"

	"github.com/suparena/recordstore/errors"
)

// Datum is one named entry in a Record's data. The value's Kind decides
// which projection table pair stores it; units and tags ride along on the
// XFromRecord side.
type Datum struct {
	Value Value
	Units string
	Tags  []string
}

type datumJSON struct {
	Value Value    `json:"value"`
	Units string   `json:"units,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// MarshalJSON encodes the datum in the interchange shape
// {"value": ..., "units": ..., "tags": [...]}.
func (d Datum) MarshalJSON() ([]byte, error) {
	return json.Marshal(datumJSON{Value: d.Value, Units: d.Units, Tags: d.Tags})
}

// UnmarshalJSON decodes the interchange shape, classifying the value.
func (d *Datum) UnmarshalJSON(data []byte) error {
	var raw datumJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Value = raw.Value
	d.Units = raw.Units
	d.Tags = raw.Tags
	return nil
}

// Validate checks the datum's value is storable.
func (d Datum) Validate() error {
	return d.Value.validate()
}

// File is a document attached to a Record.
type File struct {
	URI      string   `json:"uri"`
	Mimetype string   `json:"mimetype,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Record is the authoritative document describing one entity: a unique id,
// a type, named data entries, file attachments, and an unindexed
// user-defined blob. The record store owns the full document; every
// projection row is a derived cache keyed back to ID.
type Record struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Data        map[string]Datum `json:"data,omitempty"`
	Files       []File           `json:"files,omitempty"`
	UserDefined map[string]any   `json:"user_defined,omitempty"`
}

// New creates a Record with its two required fields.
func New(id, recordType string) *Record {
	return &Record{
		ID:   id,
		Type: recordType,
		Data: make(map[string]Datum),
	}
}

// SetData adds or replaces a named datum, classifying the value. Use the
// Datum field directly when units or tags are needed.
func (r *Record) SetData(name string, value any) error {
	v, err := DefaultClassifier.Classify(value)
	if err != nil {
		return err
	}
	if r.Data == nil {
		r.Data = make(map[string]Datum)
	}
	r.Data[name] = Datum{Value: v}
	return nil
}

// Validate checks the record is storable: required fields present and every
// string that becomes a key component free of control characters.
func (r *Record) Validate() error {
	if r.ID == "" {
		return errors.NewValidationError("id", "record id is required")
	}
	if r.Type == "" {
		return errors.NewValidationError("type", "record type is required")
	}
	if containsControl(r.ID) {
		return errors.NewValidationError("id", "record id must not contain control characters")
	}
	if containsControl(r.Type) {
		return errors.NewValidationError("type", "record type must not contain control characters")
	}
	for name, datum := range r.Data {
		if name == "" {
			return errors.NewValidationError("data", "datum names must be non-empty")
		}
		if containsControl(name) {
			return errors.NewValidationError("data", "datum name "+name+" contains control characters")
		}
		if err := datum.Value.validate(); err != nil {
			return err
		}
	}
	for _, f := range r.Files {
		if f.URI == "" {
			return errors.NewValidationError("files", "file uri is required")
		}
		if containsControl(f.URI) {
			return errors.NewValidationError("files", "file uri must not contain control characters")
		}
	}
	return nil
}

// Raw returns the record serialized as its full JSON document, the form the
// record store persists.
func (r *Record) Raw() ([]byte, error) {
	return json.Marshal(r)
}

// FromRaw parses a raw record document.
func FromRaw(raw []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
