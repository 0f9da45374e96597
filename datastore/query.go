/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import "github.com/suparena/recordstore/records"

// ScalarRange is a one- or two-sided numeric range. Nil bounds are open.
type ScalarRange struct {
	Min          *float64
	Max          *float64
	MinInclusive bool
	MaxInclusive bool
}

// Contains reports whether v satisfies the range.
func (r ScalarRange) Contains(v float64) bool {
	if r.Min != nil {
		if r.MinInclusive {
			if v < *r.Min {
				return false
			}
		} else if v <= *r.Min {
			return false
		}
	}
	if r.Max != nil {
		if r.MaxInclusive {
			if v > *r.Max {
				return false
			}
		} else if v >= *r.Max {
			return false
		}
	}
	return true
}

// IntersectsInterval reports whether the closed interval [lo, hi] overlaps
// the range. This is the semantics of scalar-list queries: the stored Min
// and Max rows describe the list's interval, and a match means the interval
// and the range intersect, not that the range contains the whole list.
func (r ScalarRange) IntersectsInterval(lo, hi float64) bool {
	if r.Min != nil {
		if r.MinInclusive {
			if hi < *r.Min {
				return false
			}
		} else if hi <= *r.Min {
			return false
		}
	}
	if r.Max != nil {
		if r.MaxInclusive {
			if lo > *r.Max {
				return false
			}
		} else if lo >= *r.Max {
			return false
		}
	}
	return true
}

// StringRange is a lexicographic range over string values.
type StringRange struct {
	Min          *string
	Max          *string
	MinInclusive bool
	MaxInclusive bool
}

// Contains reports whether s satisfies the range.
func (r StringRange) Contains(s string) bool {
	if r.Min != nil {
		if r.MinInclusive {
			if s < *r.Min {
				return false
			}
		} else if s <= *r.Min {
			return false
		}
	}
	if r.Max != nil {
		if r.MaxInclusive {
			if s > *r.Max {
				return false
			}
		} else if s >= *r.Max {
			return false
		}
	}
	return true
}

// Criterion is one data-query predicate: a datum name plus the value
// condition its projection table is scanned with. The Kind picks the table
// family.
type Criterion struct {
	Name   string
	Kind   records.Kind
	Scalar *ScalarRange
	String *StringRange
}

// ScalarEquals matches records whose scalar datum equals v.
func ScalarEquals(name string, v float64) Criterion {
	return ScalarIn(name, ScalarRange{Min: &v, Max: &v, MinInclusive: true, MaxInclusive: true})
}

// ScalarBetween matches records whose scalar datum is in [min, max].
func ScalarBetween(name string, min, max float64) Criterion {
	return ScalarIn(name, ScalarRange{Min: &min, Max: &max, MinInclusive: true, MaxInclusive: true})
}

// ScalarIn matches records whose scalar datum satisfies the range.
func ScalarIn(name string, r ScalarRange) Criterion {
	return Criterion{Name: name, Kind: records.KindScalar, Scalar: &r}
}

// StringEquals matches records whose string datum equals v.
func StringEquals(name, v string) Criterion {
	return StringIn(name, StringRange{Min: &v, Max: &v, MinInclusive: true, MaxInclusive: true})
}

// StringIn matches records whose string datum satisfies the range.
func StringIn(name string, r StringRange) Criterion {
	return Criterion{Name: name, Kind: records.KindString, String: &r}
}

// ListIntersects matches records whose scalar-list datum's [min, max]
// interval overlaps [lo, hi]. Interior membership is not checked.
func ListIntersects(name string, lo, hi float64) Criterion {
	return ListIn(name, ScalarRange{Min: &lo, Max: &hi, MinInclusive: true, MaxInclusive: true})
}

// ListIn matches records whose scalar-list interval overlaps the range.
func ListIn(name string, r ScalarRange) Criterion {
	return Criterion{Name: name, Kind: records.KindScalarList, Scalar: &r}
}

// ListHas matches records whose string-list datum contains the element.
func ListHas(name, element string) Criterion {
	return Criterion{Name: name, Kind: records.KindStringList,
		String: &StringRange{Min: &element, Max: &element, MinInclusive: true, MaxInclusive: true}}
}
