package features

import (
	"encoding/json"
	"math"
	"sort"
)

// Validate checks raw against the schema and returns the values as a Vector
// in schema order.
//
// Names not declared by the schema are rejected first (in sorted order);
// then each feature is checked in schema order for presence, kind and
// range. The first failure is returned, so identical inputs always produce
// the identical error.
func (s *Schema) Validate(raw map[string]any) (Vector, error) {
	if unknown := s.unknownNames(raw); len(unknown) > 0 {
		return Vector{}, &UnknownFeatureError{Name: unknown[0]}
	}

	values := make([]float64, len(s.defs))
	for i, def := range s.defs {
		rv, ok := raw[def.Name]
		if !ok {
			return Vector{}, &MissingFeatureError{Name: def.Name}
		}
		v, err := coerce(def, rv)
		if err != nil {
			return Vector{}, err
		}
		if !def.InRange(v) {
			return Vector{}, &OutOfRangeError{Name: def.Name, Value: v, Min: def.Min, Max: def.Max}
		}
		values[i] = v
	}
	return Vector{schema: s, values: values}, nil
}

func (s *Schema) unknownNames(raw map[string]any) []string {
	var unknown []string
	for name := range raw {
		if _, ok := s.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func coerce(def Definition, rv any) (float64, error) {
	mismatch := &TypeMismatchError{Name: def.Name, Value: rv, Want: def.Type}

	var v float64
	integral := false
	switch x := rv.(type) {
	case int:
		v, integral = float64(x), true
	case int8:
		v, integral = float64(x), true
	case int16:
		v, integral = float64(x), true
	case int32:
		v, integral = float64(x), true
	case int64:
		v, integral = float64(x), true
	case uint:
		v, integral = float64(x), true
	case uint8:
		v, integral = float64(x), true
	case uint16:
		v, integral = float64(x), true
	case uint32:
		v, integral = float64(x), true
	case uint64:
		v, integral = float64(x), true
	case float32:
		v = float64(x)
	case float64:
		v = x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, mismatch
		}
		v = f
	default:
		return 0, mismatch
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, mismatch
	}
	if def.Type == Integer && !integral && v != math.Trunc(v) {
		return 0, mismatch
	}
	return v, nil
}
