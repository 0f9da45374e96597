/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/suparena/recordstore/errors"
)

// Kind identifies which of the four projection table pairs a datum value
// belongs to. It is decided exactly once, when the value enters the store.
type Kind int

const (
	KindScalar Kind = iota
	KindString
	KindScalarList
	KindStringList
)

// String returns the kind's wire name, used as the EntityType attribute on
// projection rows.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindString:
		return "string"
	case KindScalarList:
		return "scalarlist"
	case KindStringList:
		return "stringlist"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsList reports whether the kind is one of the two list kinds.
func (k Kind) IsList() bool {
	return k == KindScalarList || k == KindStringList
}

// Value is a tagged union holding one datum value: a scalar (real number),
// a string, a list of scalars, or a list of strings.
type Value struct {
	kind    Kind
	scalar  float64
	str     string
	scalars []float64
	strs    []string
}

// ScalarValue returns a Value holding a real number.
func ScalarValue(v float64) Value {
	return Value{kind: KindScalar, scalar: v}
}

// StringValue returns a Value holding a string.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// ScalarListValue returns a Value holding a list of real numbers.
func ScalarListValue(vs ...float64) Value {
	return Value{kind: KindScalarList, scalars: vs}
}

// StringListValue returns a Value holding a list of strings.
func StringListValue(ss ...string) Value {
	return Value{kind: KindStringList, strs: ss}
}

// Kind returns the value's classification tag.
func (v Value) Kind() Kind { return v.kind }

// Scalar returns the held scalar. Valid only for KindScalar.
func (v Value) Scalar() float64 { return v.scalar }

// Str returns the held string. Valid only for KindString.
func (v Value) Str() string { return v.str }

// ScalarList returns the held scalar list. Valid only for KindScalarList.
func (v Value) ScalarList() []float64 { return v.scalars }

// StringList returns the held string list. Valid only for KindStringList.
func (v Value) StringList() []string { return v.strs }

// Len returns the element count for list kinds and 1 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindScalarList:
		return len(v.scalars)
	case KindStringList:
		return len(v.strs)
	default:
		return 1
	}
}

// Min returns the smallest element of a scalar list. The result is only
// meaningful when Len() > 0.
func (v Value) Min() float64 {
	min := math.Inf(1)
	for _, s := range v.scalars {
		if s < min {
			min = s
		}
	}
	return min
}

// Max returns the largest element of a scalar list. The result is only
// meaningful when Len() > 0.
func (v Value) Max() float64 {
	max := math.Inf(-1)
	for _, s := range v.scalars {
		if s > max {
			max = s
		}
	}
	return max
}

// Interface returns the underlying value as a plain Go value suitable for
// JSON encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindString:
		return v.str
	case KindScalarList:
		if v.scalars == nil {
			return []float64{}
		}
		return v.scalars
	case KindStringList:
		if v.strs == nil {
			return []string{}
		}
		return v.strs
	default:
		return nil
	}
}

// MarshalJSON encodes the underlying value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes and classifies a JSON value using DefaultClassifier.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := DefaultClassifier.Classify(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// validate rejects value shapes the projection tables cannot key on.
func (v Value) validate() error {
	switch v.kind {
	case KindScalar:
		if !isFinite(v.scalar) {
			return errors.NewValidationError("value", "scalar must be finite")
		}
	case KindScalarList:
		for _, s := range v.scalars {
			if !isFinite(s) {
				return errors.NewValidationError("value", "scalar list elements must be finite")
			}
		}
	case KindString:
		if containsControl(v.str) {
			return errors.NewValidationError("value", "string values must not contain control characters")
		}
	case KindStringList:
		for _, s := range v.strs {
			if containsControl(s) {
				return errors.NewValidationError("value", "string list elements must not contain control characters")
			}
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// containsControl reports whether s contains C0 control bytes. Names, ids,
// predicates, and string values become sort-key components, where the 0x1F
// separator (and its neighbors) must stay reserved.
func containsControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 {
			return true
		}
	}
	return false
}

// Classifier decides which table pair a runtime value belongs to.
// EmptyListKind sets the policy for the ambiguous empty list.
type Classifier struct {
	// EmptyListKind is the kind assigned to empty lists. Must be one of the
	// two list kinds; anything else falls back to KindScalarList.
	EmptyListKind Kind
}

// DefaultClassifier stores empty lists as scalar lists.
var DefaultClassifier = Classifier{EmptyListKind: KindScalarList}

// Classify inspects the runtime shape of v and returns the tagged Value.
//
// Lists whose first element is a real number are scalar lists; other lists
// are string lists. Non-list real numbers are scalars. Everything else is
// stored as its string form.
func (c Classifier) Classify(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return t, nil
	case float64:
		return ScalarValue(t), nil
	case float32:
		return ScalarValue(float64(t)), nil
	case int:
		return ScalarValue(float64(t)), nil
	case int32:
		return ScalarValue(float64(t)), nil
	case int64:
		return ScalarValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, errors.NewValidationError("value", "unparseable number "+t.String())
		}
		return ScalarValue(f), nil
	case string:
		return StringValue(t), nil
	case []float64:
		return ScalarListValue(t...), nil
	case []string:
		return StringListValue(t...), nil
	case []any:
		return c.classifyList(t)
	case nil:
		return Value{}, errors.NewValidationError("value", "missing value")
	default:
		return StringValue(fmt.Sprintf("%v", t)), nil
	}
}

func (c Classifier) classifyList(list []any) (Value, error) {
	if len(list) == 0 {
		if c.EmptyListKind == KindStringList {
			return StringListValue(), nil
		}
		return ScalarListValue(), nil
	}
	if _, ok := asFloat(list[0]); ok {
		scalars := make([]float64, len(list))
		for i, el := range list {
			f, ok := asFloat(el)
			if !ok {
				return Value{}, errors.NewValidationError("value",
					fmt.Sprintf("list element %d is not a number", i))
			}
			scalars[i] = f
		}
		return ScalarListValue(scalars...), nil
	}
	strs := make([]string, len(list))
	for i, el := range list {
		s, ok := el.(string)
		if !ok {
			return Value{}, errors.NewValidationError("value",
				fmt.Sprintf("list element %d is not a string", i))
		}
		strs[i] = s
	}
	return StringListValue(strs...), nil
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
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
