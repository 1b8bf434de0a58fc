package tree

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindScalar
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	default:
		return "null"
	}
}

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value *Node
}

// Node is one value of the document tree.
type Node struct {
	kind   Kind
	fields []Field
	items  []*Node

	// scalar payload; quoted marks JSON strings as opposed to numbers and booleans
	value  string
	quoted bool
}

// NewObject returns an Object node holding fields in the given order.
func NewObject(fields ...Field) *Node {
	return &Node{kind: KindObject, fields: fields}
}

// NewArray returns an Array node.
func NewArray(items ...*Node) *Node {
	return &Node{kind: KindArray, items: items}
}

// NewString returns a string Scalar.
func NewString(s string) *Node {
	return &Node{kind: KindScalar, value: s, quoted: true}
}

// NewNumber returns a number Scalar from its literal text.
func NewNumber(literal string) *Node {
	return &Node{kind: KindScalar, value: literal}
}

// NewBool returns a boolean Scalar.
func NewBool(b bool) *Node {
	return &Node{kind: KindScalar, value: strconv.FormatBool(b)}
}

// NewNull returns a Null node.
func NewNull() *Node {
	return &Node{kind: KindNull}
}

// F is shorthand for building a Field.
func F(key string, value *Node) Field {
	return Field{Key: key, Value: value}
}

// Kind returns the variant tag. A nil node reports KindNull.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsObject reports whether n is an Object.
func (n *Node) IsObject() bool { return n.Kind() == KindObject }

// IsArray reports whether n is an Array.
func (n *Node) IsArray() bool { return n.Kind() == KindArray }

// Fields returns the fields of an Object in document order.
func (n *Node) Fields() []Field {
	if !n.IsObject() {
		return nil
	}
	return n.fields
}

// Items returns the items of an Array.
func (n *Node) Items() []*Node {
	if !n.IsArray() {
		return nil
	}
	return n.items
}

// Len returns the number of fields or items; zero for scalars and null.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindObject:
		return len(n.fields)
	case KindArray:
		return len(n.items)
	default:
		return 0
	}
}

// Get returns the value stored under key. When a key repeats, the last
// occurrence wins, as with any JSON object decoder.
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsObject() {
		return nil, false
	}
	for i := len(n.fields) - 1; i >= 0; i-- {
		if n.fields[i].Key == key {
			return n.fields[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether an Object contains key, whatever its value.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Index returns the i-th item of an Array.
func (n *Node) Index(i int) (*Node, bool) {
	if !n.IsArray() || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

// AsString returns the payload of a string Scalar.
func (n *Node) AsString() (string, bool) {
	if n.Kind() != KindScalar || !n.quoted {
		return "", false
	}
	return n.value, true
}

// Text returns the payload of any Scalar, or "" for other kinds.
func (n *Node) Text() string {
	if n.Kind() != KindScalar {
		return ""
	}
	return n.value
}

// GetString is Get followed by AsString.
func (n *Node) GetString(key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// MarshalJSON encodes the node, keeping object field order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	switch n.Kind() {
	case KindObject:
		buf.WriteByte('{')
		for i, f := range n.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindScalar:
		if !n.quoted {
			buf.WriteString(n.value)
			return nil
		}
		return writeString(buf, n.value)
	default:
		buf.WriteString("null")
	}
	return nil
}

// writeString quotes s as a JSON string without HTML escaping, so narrative
// markup survives a round trip unchanged.
func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}
