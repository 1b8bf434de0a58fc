// Package resource classifies bundle entries into coded clinical entries.
//
// A closed dispatch table maps each supported resourceType to a Kind and to
// the path of its main coded concept. Classify reads the main code, collects
// every other coded concept nested in the resource and applies the injected
// NegationPolicy. Entries that cannot be classified are reported as issues,
// never as errors.
package resource
