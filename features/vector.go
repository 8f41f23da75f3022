package features

import (
	"strconv"
	"strings"
)

// Vector is a validated feature record. Values are held in schema order and
// cannot be modified after validation.
type Vector struct {
	schema *Schema
	values []float64
}

func (v Vector) Schema() *Schema {
	return v.schema
}

func (v Vector) Len() int {
	return len(v.values)
}

// At returns the i-th value in schema order.
func (v Vector) At(i int) float64 {
	return v.values[i]
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, bool) {
	if v.schema == nil {
		return 0, false
	}
	i := v.schema.Index(name)
	if i < 0 || i >= len(v.values) {
		return 0, false
	}
	return v.values[i], true
}

// Values returns a copy of the values in schema order, ready for positional
// consumption by a model.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

func (v Vector) Names() []string {
	if v.schema == nil {
		return nil
	}
	return v.schema.Names()
}

// Map returns the values keyed by feature name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for i, name := range v.Names() {
		out[name] = v.values[i]
	}
	return out
}

// Fingerprint returns a stable key for the ordered values. Two vectors of
// the same schema have equal fingerprints iff their values are bit-identical.
func (v Vector) Fingerprint() string {
	var b strings.Builder
	b.Grow(len(v.values) * 8)
	for i, x := range v.values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}
