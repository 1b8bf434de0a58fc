package fhircodes

// Version is the release of this module.
const Version = "0.1.0"

// FHIRVersion represents a FHIR specification version.
type FHIRVersion string

// R4 is FHIR Release 4 (4.0.1), the release bundles and exported
// CodeSystem resources follow.
const R4 FHIRVersion = "R4"

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// UserAgent identifies the module in logs and command output.
func UserAgent() string {
	return "fhircodes/" + Version + " (FHIR " + R4.String() + ")"
}
