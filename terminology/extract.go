package terminology

import (
	"iter"

	"github.com/gofhir/fhircodes/tree"
)

// codingKey marks an object as a CodeableConcept.
const codingKey = "coding"

// Extract walks root depth-first in document order and yields a Code for every
// object holding a "coding" key. The subtree at skip, a path relative to root,
// is not visited; an empty skip visits everything.
//
// Input is a document tree, so no cycle detection is done.
func Extract(root *tree.Node, skip tree.Path) iter.Seq[Code] {
	return func(yield func(Code) bool) {
		walk(root, nil, skip, yield)
	}
}

// ExtractAll collects Extract into a slice, dropping sentinel codes.
func ExtractAll(root *tree.Node, skip tree.Path) []Code {
	var codes []Code
	for c := range Extract(root, skip) {
		if c.IsUnknown() {
			continue
		}
		codes = append(codes, c)
	}
	return codes
}

// walk returns false once yield asks to stop.
func walk(n *tree.Node, at, skip tree.Path, yield func(Code) bool) bool {
	if len(skip) > 0 && at.Equal(skip) {
		return true
	}

	switch n.Kind() {
	case tree.KindObject:
		if n.Has(codingKey) {
			if !yield(Normalize(n)) {
				return false
			}
		}
		for _, f := range n.Fields() {
			if !walk(f.Value, at.Child(f.Key), skip, yield) {
				return false
			}
		}
	case tree.KindArray:
		for i, item := range n.Items() {
			if !walk(item, at.Item(i), skip, yield) {
				return false
			}
		}
	}
	return true
}
