// Package features declares the application feature schema and validates raw
// input records into ordered, immutable feature vectors.
package features

import (
	"errors"
	"fmt"
)

type ValueType int

const (
	Real ValueType = iota
	Integer
)

func (t ValueType) String() string {
	switch t {
	case Real:
		return "real"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// MissingRule describes how a feature encodes "unknown".
type MissingRule int

const (
	// NoMissing means every in-range value is a genuine measurement.
	NoMissing MissingRule = iota
	// SentinelValue means Definition.Sentinel encodes a missing value.
	SentinelValue
	// NegativeValues means any value below zero encodes a missing value.
	NegativeValues
)

func (r MissingRule) String() string {
	switch r {
	case SentinelValue:
		return "sentinel"
	case NegativeValues:
		return "negative"
	default:
		return "none"
	}
}

func (r MissingRule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Definition describes one model input.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        ValueType   `json:"value_type"`
	Min         float64     `json:"min"`
	Max         float64     `json:"max"`
	Step        float64     `json:"step"`
	Missing     MissingRule `json:"missing"`
	Sentinel    float64     `json:"sentinel,omitempty"`
}

// IsMissing reports whether v is this feature's encoding of an unknown value.
func (d Definition) IsMissing(v float64) bool {
	switch d.Missing {
	case SentinelValue:
		return v == d.Sentinel
	case NegativeValues:
		return v < 0
	default:
		return false
	}
}

// InRange reports whether min <= v <= max.
func (d Definition) InRange(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// Schema is an ordered, immutable set of feature definitions. Model
// artifacts consume vectors positionally in this order.
type Schema struct {
	defs  []Definition
	index map[string]int
}

// NewSchema builds a schema from defs, preserving their order.
func NewSchema(defs ...Definition) (*Schema, error) {
	if len(defs) == 0 {
		return nil, errors.New("schema has no features")
	}
	s := &Schema{
		defs:  make([]Definition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := s.index[def.Name]; dup {
			return nil, fmt.Errorf("duplicate feature %q", def.Name)
		}
		if def.Min > def.Max {
			return nil, fmt.Errorf("feature %q: min %v greater than max %v", def.Name, def.Min, def.Max)
		}
		if def.Missing == SentinelValue && !def.InRange(def.Sentinel) {
			return nil, fmt.Errorf("feature %q: sentinel %v outside [%v, %v]", def.Name, def.Sentinel, def.Min, def.Max)
		}
		s.defs[i] = def
		s.index[def.Name] = i
	}
	return s, nil
}

// Describe returns the definition of the named feature.
func (s *Schema) Describe(name string) (Definition, error) {
	i, ok := s.index[name]
	if !ok {
		return Definition{}, &UnknownFeatureError{Name: name}
	}
	return s.defs[i], nil
}

// MustDescribe is Describe for names known at compile time. It panics on an
// unknown name.
func (s *Schema) MustDescribe(name string) Definition {
	def, err := s.Describe(name)
	if err != nil {
		panic(err)
	}
	return def
}

// All returns a copy of the definitions in schema order.
func (s *Schema) All() []Definition {
	out := make([]Definition, len(s.defs))
	copy(out, s.defs)
	return out
}

func (s *Schema) Names() []string {
	names := make([]string, len(s.defs))
	for i, def := range s.defs {
		names[i] = def.Name
	}
	return names
}

func (s *Schema) Len() int {
	return len(s.defs)
}

// Index returns the position of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}
