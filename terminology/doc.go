// Package terminology turns FHIR CodeableConcepts into typed codes and keeps
// the code dictionaries built during a run.
//
// The package provides:
//   - Normalize: converts one {coding, text} object into a Code, degrading to
//     the "0" sentinel when the coding or its system is missing
//   - Extract: lazily walks any subtree and yields every embedded concept
//   - Dictionary: code -> description map with last-write-wins semantics,
//     exportable as an R4 CodeSystem
//
// Example usage:
//
//	for c := range terminology.Extract(resource, tree.MustParsePath("code")) {
//	    if c.Known() {
//	        fmt.Println(c.System, c.Code, c.Text)
//	    }
//	}
package terminology
