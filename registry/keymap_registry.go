/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"regexp"
	"strings"
	"sync"

	"github.com/suparena/recordstore/errors"
)

// KeyMapRegistry associates projection tables with their key templates.
//
// A key map describes how a projection's physical key fields (PK, SK, and the
// GSI fields PK1/SK1) are assembled from the fields of a logical row, for
// example:
//
//	{"PK": "SCALAR#{name}", "SK": "{value}\x1f{id}"}
//
// Macros in braces are replaced by the corresponding field values at write
// time. Every projection registers its key map once, at init.

var (
	keyMapRegistry = make(map[string]map[string]string)
	mu             sync.RWMutex
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// RegisterKeyMap associates a projection table name with its key templates.
func RegisterKeyMap(table string, keyMap map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	keyMapRegistry[table] = keyMap
}

// GetKeyMap retrieves the key map for a projection table, if any.
func GetKeyMap(table string) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := keyMapRegistry[table]
	return m, ok
}

// Expand builds the physical key fields for one row of a projection table by
// substituting the row's fields into the table's registered templates.
// Fields missing from the row expand to the empty string, same as an absent
// attribute would.
func Expand(table string, fields map[string]string) (map[string]string, error) {
	keyMap, ok := GetKeyMap(table)
	if !ok {
		return nil, errors.ErrNoKeyMap
	}

	res := make(map[string]string, len(keyMap))
	for keyField, template := range keyMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			name := strings.Trim(macro, "{}")
			return fields[name]
		})
		res[keyField] = expanded
	}
	return res, nil
}
