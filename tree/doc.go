// Package tree models a decoded FHIR document as an ordered tagged variant.
//
// A Node is an Object, an Array, a Scalar or Null. Objects keep their fields in
// document order, which JSON decoding into map[string]any cannot, so any walk
// over a Node visits keys exactly as they appear in the bundle.
//
// Nodes are built either from raw JSON with Parse, or from an already decoded
// generic value with FromValue (map keys are then sorted, since the source
// order is lost).
//
//	root, err := tree.Parse(bundleJSON)
//	code, ok := root.Lookup(tree.MustParsePath("entry[1].resource.code"))
package tree
