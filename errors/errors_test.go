/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("record", "run_22")

	expected := `record with key "run_22" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("record", "run_22")

	expected := `record with key "run_22" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "id",
			message:  "record id is required",
			expected: `validation failed for field "id": record id is required`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "bad input",
			expected: "validation failed: bad input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
			if !IsValidationError(err) {
				t.Error("IsValidationError should return true")
			}
		})
	}
}

func TestBatchTooLargeError(t *testing.T) {
	err := NewBatchTooLargeError(150, 100)

	expected := "atomic batch of 150 statements exceeds backend limit of 100"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrBatchTooLarge) {
		t.Error("BatchTooLargeError should match ErrBatchTooLarge")
	}
	if !IsBatchTooLarge(err) {
		t.Error("IsBatchTooLarge should return true")
	}
}

func TestWrappedErrors(t *testing.T) {
	inner := NewNotFoundError("record", "x")
	wrapped := fmt.Errorf("reading projection: %w", inner)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through wrapping")
	}
	var nf *NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Error("errors.As should find NotFoundError through wrapping")
	}
}
