// Package section indexes the narrative sections of a FHIR document bundle.
//
// The Composition at entry[0] lists sections, each with a code, a narrative
// div and references to the resources it groups. Build turns that list into
// an Index mapping resource uuids to normalized section codes, with per-section
// word and character counts taken from the narrative.
package section
