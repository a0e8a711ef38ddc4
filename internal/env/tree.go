package env

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind identifies the shape of a Tree node.
type Kind uint8

const (
	// Null is the wildcard: in a required tree it matches any available value.
	Null Kind = iota
	// Scalar is a string, number, or boolean leaf.
	Scalar
	// Sequence is an ordered list of nodes.
	Sequence
	// Map is a keyed collection of nodes. Key order is preserved from the
	// source document so diagnostics walk the tree the way it was written.
	Map
)

// Tree is a single node of an environment document.
//
// Environment documents are JSON-like values: maps, sequences, scalars, and
// a designated wildcard (JSON null). Rather than passing raw map[string]any
// shapes around, every node is lifted into this tagged variant so the
// matcher can switch on shape explicitly.
//
// A Tree is immutable after construction. The matcher never modifies one;
// it copies sequence contents into local working slices where it needs to
// consume entries.
type Tree struct {
	kind    Kind
	scalar  any
	items   []*Tree
	entries map[string]*Tree
	keys    []string
}

// NewWildcard returns the wildcard node. In a required tree it matches any
// available value; inside a required sequence it turns the match into an
// existence-only check.
func NewWildcard() *Tree {
	return &Tree{kind: Null}
}

// NewScalar returns a scalar leaf. Integers are normalised to float64 so a
// value written as 5 compares equal to a JSON-decoded 5.0. A nil value is
// the wildcard.
func NewScalar(v any) *Tree {
	if v == nil {
		return NewWildcard()
	}
	return &Tree{kind: Scalar, scalar: normaliseScalar(v)}
}

// NewList returns a sequence node over the given items.
func NewList(items ...*Tree) *Tree {
	return &Tree{kind: Sequence, items: items}
}

// NewMap returns an empty map node. Populate it with Set.
func NewMap() *Tree {
	return &Tree{kind: Map, entries: make(map[string]*Tree)}
}

// Set adds or replaces a key on a map node and returns the node, allowing
// chained construction in tests and fixtures. Set panics when called on a
// non-map node; that is always a programming error.
func (t *Tree) Set(key string, v *Tree) *Tree {
	if t.kind != Map {
		panic("env: Set on non-map tree node")
	}
	if _, ok := t.entries[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = v
	return t
}

// Kind reports the shape of the node.
func (t *Tree) Kind() Kind {
	return t.kind
}

// IsWildcard reports whether the node is the wildcard value.
func (t *Tree) IsWildcard() bool {
	return t.kind == Null
}

// ScalarValue returns the scalar payload of a Scalar node, or nil for any
// other shape.
func (t *Tree) ScalarValue() any {
	if t.kind != Scalar {
		return nil
	}
	return t.scalar
}

// Items returns the elements of a Sequence node. The returned slice is the
// node's own backing storage; callers must not modify it.
func (t *Tree) Items() []*Tree {
	return t.items
}

// Keys returns the keys of a Map node in document order.
func (t *Tree) Keys() []string {
	return t.keys
}

// Get returns the child under key on a Map node.
func (t *Tree) Get(key string) (*Tree, bool) {
	if t.kind != Map {
		return nil, false
	}
	v, ok := t.entries[key]
	return v, ok
}

// Len returns the number of elements of a Sequence or entries of a Map.
func (t *Tree) Len() int {
	switch t.kind {
	case Sequence:
		return len(t.items)
	case Map:
		return len(t.keys)
	default:
		return 0
	}
}

// Equal reports deep equality of two nodes. Scalars compare by normalised
// value, sequences element-wise in order, maps key-wise.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case Null:
		return true
	case Scalar:
		return t.scalar == o.scalar
	case Sequence:
		if len(t.items) != len(o.items) {
			return false
		}
		for i := range t.items {
			if !t.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default: // Map
		if len(t.entries) != len(o.entries) {
			return false
		}
		for k, v := range t.entries {
			ov, ok := o.entries[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
}

// Value converts the node back to a plain Go value (nil, scalar, []any, or
// map[string]any). Used for diagnostics and JSON serialisation.
func (t *Tree) Value() any {
	switch t.kind {
	case Null:
		return nil
	case Scalar:
		return t.scalar
	case Sequence:
		out := make([]any, len(t.items))
		for i, it := range t.items {
			out[i] = it.Value()
		}
		return out
	default: // Map
		out := make(map[string]any, len(t.entries))
		for k, v := range t.entries {
			out[k] = v.Value()
		}
		return out
	}
}

// MarshalJSON serialises the node as the plain JSON value it was built from.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value())
}

// FromValue lifts a plain Go value (as produced by encoding/json or
// yaml.v3 decoding into any) into a Tree. Unsupported leaf types are kept
// as opaque scalars; they compare by interface equality.
func FromValue(v any) *Tree {
	switch val := v.(type) {
	case nil:
		return NewWildcard()
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(val) {
			m.Set(k, FromValue(val[k]))
		}
		return m
	case []any:
		items := make([]*Tree, len(val))
		for i, e := range val {
			items[i] = FromValue(e)
		}
		return NewList(items...)
	default:
		return NewScalar(val)
	}
}

// FromJSON decodes a JSON document into a Tree, preserving map key order.
func FromJSON(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	t, err := decodeNode(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing environment document: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parsing environment document: trailing data after value")
	}
	return t, nil
}

// decodeNode consumes one complete JSON value from the decoder.
func decodeNode(dec *json.Decoder) (*Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return m, nil
		case '[':
			var items []*Tree
			for dec.More() {
				child, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return NewList(items...), nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case nil:
		return NewWildcard(), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return NewScalar(f), nil
	default: // string, bool
		return NewScalar(v), nil
	}
}

// normaliseScalar widens integer and float types to float64 so scalars
// built in code compare equal to JSON-decoded numbers.
func normaliseScalar(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return string(n)
		}
		return f
	default:
		return v
	}
}

// sortedKeys returns map keys in sorted order so FromValue is deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
