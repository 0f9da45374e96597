/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"errors"
	"testing"

	rserrors "github.com/suparena/recordstore/errors"
)

func TestRegisterAndExpand(t *testing.T) {
	RegisterKeyMap("TestTable", map[string]string{
		"PK": "USER#{id}",
		"SK": "{email}",
	})

	expanded, err := Expand("TestTable", map[string]string{
		"id":    "123",
		"email": "bob@example.com",
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if expanded["PK"] != "USER#123" {
		t.Errorf("PK = %q, want USER#123", expanded["PK"])
	}
	if expanded["SK"] != "bob@example.com" {
		t.Errorf("SK = %q, want bob@example.com", expanded["SK"])
	}
}

func TestExpandMissingField(t *testing.T) {
	RegisterKeyMap("Sparse", map[string]string{"PK": "X#{missing}"})
	expanded, err := Expand("Sparse", map[string]string{})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	// Unknown macros expand to empty, matching key construction for rows
	// that omit optional components.
	if expanded["PK"] != "X#" {
		t.Errorf("PK = %q, want X#", expanded["PK"])
	}
}

func TestExpandUnregisteredTable(t *testing.T) {
	_, err := Expand("NoSuchTable", map[string]string{"id": "1"})
	if err == nil {
		t.Fatal("expected error for unregistered table")
	}
	if !errors.Is(err, rserrors.ErrNoKeyMap) {
		t.Errorf("expected ErrNoKeyMap, got %v", err)
	}
}

func TestGetKeyMap(t *testing.T) {
	RegisterKeyMap("Lookup", map[string]string{"PK": "A#{id}"})
	km, ok := GetKeyMap("Lookup")
	if !ok {
		t.Fatal("GetKeyMap should find registered table")
	}
	if km["PK"] != "A#{id}" {
		t.Errorf("key map = %v", km)
	}
	if _, ok := GetKeyMap("Absent"); ok {
		t.Error("GetKeyMap should miss unregistered table")
	}
}
