package tree

import (
	"reflect"
	"slices"
)

// Value is a node of a configuration tree. It is either a Mapping or a
// Scalar; no other implementations exist.
type Value interface {
	isValue()
}

// Mapping is an interior node: string keys mapped to child values.
// The root of every document is a Mapping.
type Mapping map[string]Value

// Scalar is a leaf node. It holds a string, number, bool, nil (the null
// placeholder) or any other decoded value, such as a sequence, which is
// carried through migrations untouched.
type Scalar struct {
	v any
}

func (Mapping) isValue() {}
func (Scalar) isValue()  {}

// NewScalar wraps v as a leaf. Use Of when v may be a decoded map.
func NewScalar(v any) Scalar {
	return Scalar{v: v}
}

// Null returns the null placeholder, as produced by an empty YAML key.
func Null() Scalar {
	return Scalar{}
}

// IsNull reports whether s is the null placeholder.
func (s Scalar) IsNull() bool {
	return s.v == nil
}

// Interface returns the wrapped value.
func (s Scalar) Interface() any {
	return s.v
}

// Of converts a decoded value into a tree Value. Maps with string keys become
// Mappings (recursively); everything else becomes a Scalar.
func Of(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		m := make(Mapping, len(t))
		for k, child := range t {
			key, ok := k.(string)
			if !ok {
				// Non-string keys cannot be addressed by a dotted path.
				return NewScalar(v)
			}
			m[key] = Of(child)
		}
		return m
	default:
		return NewScalar(v)
	}
}

// FromMap builds a Mapping from decoder output such as the result of
// yaml.Unmarshal into a map[string]any. A nil map yields an empty Mapping.
func FromMap(src map[string]any) Mapping {
	m := make(Mapping, len(src))
	for k, v := range src {
		m[k] = Of(v)
	}
	return m
}

// ToMap converts the Mapping back into plain Go maps suitable for encoders
// and for viper.
func (m Mapping) ToMap() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = toAny(v)
	}
	return out
}

func toAny(v Value) any {
	switch t := v.(type) {
	case Mapping:
		return t.ToMap()
	case Scalar:
		return t.v
	default:
		return nil
	}
}

// Clone returns a deep copy of the mapping structure. Scalar payloads are
// shared, so callers must not mutate opaque values in place.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		if child, ok := v.(Mapping); ok {
			out[k] = child.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Equal reports whether m and other have the same shape and leaf values.
func (m Mapping) Equal(other Mapping) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	switch at := a.(type) {
	case Mapping:
		bt, ok := b.(Mapping)
		return ok && at.Equal(bt)
	case Scalar:
		bt, ok := b.(Scalar)
		return ok && reflect.DeepEqual(at.v, bt.v)
	default:
		return a == nil && b == nil
	}
}

// Paths returns the dotted path of every leaf in m, sorted. Empty mappings
// are reported as leaves so that no node is hidden.
func (m Mapping) Paths() []string {
	var out []string
	m.collectPaths(nil, &out)
	slices.Sort(out)
	return out
}

func (m Mapping) collectPaths(prefix Path, out *[]string) {
	for k, v := range m {
		p := append(slices.Clone(prefix), k)
		if child, ok := v.(Mapping); ok && len(child) > 0 {
			child.collectPaths(p, out)
			continue
		}
		*out = append(*out, p.String())
	}
}
