// Package fhircodes extracts SNOMED-CT and RxNorm codes from FHIR document
// bundles and aggregates them per LOINC section.
//
// Each bundle is read as an ordered document tree. The first entry carries the
// Composition section list, which maps resource uuids to section codes. Every
// other entry is classified by resource type into a clinical entry holding a
// main code, the additional codes nested inside the resource and a negation
// flag. Codes are then counted under composite keys of the form
//
//	<section>_[F-]<sct_|rxn_><code>
//
// where "F-" marks family history. The per-document tables feed downstream
// feature-matrix builders; the corpus aggregate keeps code dictionaries and
// per-section text statistics.
//
// # Quick Start
//
//	import (
//	    fc "github.com/gofhir/fhircodes"
//	    "github.com/gofhir/fhircodes/engine"
//	)
//
//	ex, err := engine.New(
//	    fc.WithNegationField("abatementString"),
//	    fc.WithAdditionalCodes(true),
//	)
//	if err != nil {
//	    // the section pattern or negation expression did not compile
//	}
//
//	doc, err := ex.ProcessBytes(ctx, "patient-1", bundleJSON)
//	if err != nil {
//	    // the bundle could not be read at all; other documents are unaffected
//	}
//	for _, row := range doc.Table() {
//	    fmt.Println(row.Key, row.Count, row.Negations)
//	}
//
//	summary := ex.Corpus().Summary()
//
// # Failure Model
//
// Problems inside a single entry (missing fields, unknown resource types,
// malformed codings) are reported as [Issue] values and logged; the entry is
// skipped and the document continues. Only a bundle that cannot be read as a
// tree fails, and only for that document.
//
// # Functional Options
//
//	ex, err := engine.New(
//	    fc.WithSectionPattern(`\d{2,6}-\d`),
//	    fc.WithFallbackSection("00000-0"),
//	    fc.WithNegationExpression("verificationStatus.coding.code = 'refuted'"),
//	    fc.WithWorkerCount(runtime.NumCPU()),
//	)
package fhircodes
