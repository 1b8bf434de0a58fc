package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/buger/jsonparser"
)

var (
	// ErrSyntax is returned when input is not well-formed JSON.
	ErrSyntax = errors.New("tree: invalid JSON")
	// ErrNotObject is returned when a document root is not an object.
	ErrNotObject = errors.New("tree: document root is not an object")
)

// Parse decodes JSON into a Node, keeping object fields in document order.
func Parse(data []byte) (*Node, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return build(value, dataType)
}

// ParseDocument is Parse for bundle roots: anything but an object fails.
func ParseDocument(data []byte) (*Node, error) {
	n, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !n.IsObject() {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, n.Kind())
	}
	return n, nil
}

// Decode reads r to the end and parses it.
func Decode(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tree: read: %w", err)
	}
	return Parse(data)
}

func build(value []byte, dataType jsonparser.ValueType) (*Node, error) {
	switch dataType {
	case jsonparser.Object:
		n := &Node{kind: KindObject}
		err := jsonparser.ObjectEach(value, func(key, v []byte, dt jsonparser.ValueType, _ int) error {
			child, err := build(v, dt)
			if err != nil {
				return err
			}
			n.fields = append(n.fields, Field{Key: string(key), Value: child})
			return nil
		})
		if err != nil {
			return nil, wrapSyntax(err)
		}
		return n, nil

	case jsonparser.Array:
		n := &Node{kind: KindArray}
		var itemErr error
		_, err := jsonparser.ArrayEach(value, func(v []byte, dt jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			child, err := build(v, dt)
			if err != nil {
				itemErr = err
				return
			}
			n.items = append(n.items, child)
		})
		if err == nil {
			err = itemErr
		}
		if err != nil {
			return nil, wrapSyntax(err)
		}
		return n, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, wrapSyntax(err)
		}
		return NewString(s), nil

	case jsonparser.Number, jsonparser.Boolean:
		return &Node{kind: KindScalar, value: string(value)}, nil

	case jsonparser.Null:
		return NewNull(), nil

	default:
		return nil, fmt.Errorf("%w: unexpected value %q", ErrSyntax, value)
	}
}

func wrapSyntax(err error) error {
	if errors.Is(err, ErrSyntax) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrSyntax, err)
}

// FromValue converts a value produced by encoding/json (maps, slices,
// strings, float64, json.Number, bool, nil) into a Node. Map keys are sorted
// because Go maps carry no order.
func FromValue(v any) *Node {
	switch x := v.(type) {
	case *Node:
		return x
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: FromValue(x[k])})
		}
		return NewObject(fields...)
	case []any:
		items := make([]*Node, 0, len(x))
		for _, item := range x {
			items = append(items, FromValue(item))
		}
		return NewArray(items...)
	case string:
		return NewString(x)
	case json.Number:
		return NewNumber(x.String())
	case float64:
		return NewNumber(strconv.FormatFloat(x, 'g', -1, 64))
	case int:
		return NewNumber(strconv.Itoa(x))
	case bool:
		return NewBool(x)
	default:
		return NewNull()
	}
}
