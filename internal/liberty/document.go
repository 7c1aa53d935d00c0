package liberty

// =============================================================================
// DOCUMENT MODEL: ONE TREE, TWO SYNTAXES
// =============================================================================
//
// The Document is the pivot between Liberty source text and everything
// downstream (the JSON interchange dump, the Liberty writer, the SDF
// mapper). Every consumer switches exhaustively over the five variants:
//
//	String  - scalar that was quoted in the source
//	Number  - scalar that was bare in the source (quoting round-trips!)
//	Array   - flat numeric array, e.g. index_1 ("0.1, 0.2, 0.3");
//	Matrix  - array of numeric arrays, e.g. lookup-table values
//	List    - siblings that shared one key (duplicate-key rule)
//	Group   - named node with ordered children
//
// If a consumer hits a shape it does not handle, that is a bug in the
// producer, not something to paper over here.
// =============================================================================

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Value is one node of a Document tree.
type Value interface {
	value()
}

// String is a scalar that carried quotes in the source text.
type String string

// Number is a scalar that was bare in the source text. The literal is
// kept verbatim so that formatting (and the quoted/bare distinction)
// survives a round trip.
type Number string

// Array is a flat sequence of numeric scalars.
type Array []Number

// Matrix is a sequence of numeric arrays (2-D lookup-table data).
type Matrix []Array

// List holds sibling values that shared one key. A key that occurs only
// once never becomes a List of length 1.
type List []Value

// Group is a named structural node with an ordered child mapping.
// The group's type and parameter are encoded in its key in the parent
// ("pin A", "timing", "library my_lib").
type Group struct {
	keys     []string
	children map[string]Value
}

func (String) value() {}
func (Number) value() {}
func (Array) value()  {}
func (Matrix) value() {}
func (List) value()   {}
func (*Group) value() {}

// Float parses the numeric literal.
func (n Number) Float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// NewGroup returns an empty Group.
func NewGroup() *Group {
	return &Group{children: make(map[string]Value)}
}

// Add inserts a child, applying the duplicate-key rule: a second value
// for an existing key collapses both into a List under that key, in
// arrival order.
func (g *Group) Add(key string, v Value) {
	old, ok := g.children[key]
	if !ok {
		g.keys = append(g.keys, key)
		g.children[key] = v
		return
	}
	if list, isList := old.(List); isList {
		g.children[key] = append(list, v)
		return
	}
	g.children[key] = List{old, v}
}

// Get returns the child stored under key.
func (g *Group) Get(key string) (Value, bool) {
	v, ok := g.children[key]
	return v, ok
}

// Keys returns the child keys in insertion order.
func (g *Group) Keys() []string {
	return g.keys
}

// Len returns the number of distinct child keys.
func (g *Group) Len() int {
	return len(g.keys)
}

// Equal reports structural equality of two Documents. Numbers compare
// by literal text; a List never equals a non-List even when it has one
// element.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case Matrix:
		bv, ok := b.(Matrix)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Group:
		bv, ok := b.(*Group)
		if !ok || len(av.keys) != len(bv.keys) {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k {
				return false
			}
			if !Equal(av.children[k], bv.children[k]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON emits the literal unchanged, keeping source formatting.
func (n Number) MarshalJSON() ([]byte, error) {
	if _, err := n.Float(); err != nil {
		return nil, fmt.Errorf("number literal %q: %w", string(n), err)
	}
	return []byte(n), nil
}

// MarshalJSON writes children in insertion order.
func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(g.children[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DumpJSON renders the Document as the indented JSON interchange form.
func DumpJSON(root *Group, indent string) ([]byte, error) {
	return json.MarshalIndent(root, "", indent)
}
