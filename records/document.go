/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import "encoding/json"

// Document is the interchange shape produced by the converters: a bundle of
// records and the relationships between them.
type Document struct {
	Records       []*Record      `json:"records"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// ParseDocument decodes an interchange document and validates every record
// and relationship in it.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for _, rec := range doc.Records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}
	for _, rel := range doc.Relationships {
		if err := rel.Validate(); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
