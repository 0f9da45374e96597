/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import "github.com/suparena/recordstore/errors"

// Relationship is a predicate-labeled edge between two record ids, read
// "subject predicate object" (ex: task_1 contains run_22). Storage mirrors
// each triple into two tables so traversal from either end is a single
// partition lookup.
type Relationship struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Validate checks all three components are present and key-safe.
func (rel Relationship) Validate() error {
	if rel.Subject == "" || rel.Predicate == "" || rel.Object == "" {
		return errors.NewValidationError("relationship",
			"subject, predicate, and object are all required")
	}
	for _, part := range []string{rel.Subject, rel.Predicate, rel.Object} {
		if containsControl(part) {
			return errors.NewValidationError("relationship",
				"relationship components must not contain control characters")
		}
	}
	return nil
}
